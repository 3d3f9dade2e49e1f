package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// ErrNotFound marks a quiz id the upstream API does not know.
var ErrNotFound = errors.New("quiz not found")

const maxBodyBytes = 4 << 20

// Error carries the upstream status and a best-effort human-readable message.
// Malformed is set when the response claimed JSON but the body did not parse;
// in that case Message holds the raw body text.
type Error struct {
	Status    int
	Message   string
	Malformed bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("quiz api: %s (status %d)", e.Message, e.Status)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client talks to the external quiz REST API. It is the only place that sees
// the upstream id duck-typing (documents carry "_id", "id", or both); every
// response is resolved into the canonical domain ID before it leaves here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ quiz.Repository = (*Client)(nil)

// NewClient builds a quiz API client. baseURL is the API root, e.g.
// "http://localhost:4000/api".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// quizDoc is the upstream wire shape of a quiz.
type quizDoc struct {
	ServerID  string          `json:"_id,omitempty"`
	ID        string          `json:"id,omitempty"`
	Title     string          `json:"title"`
	Questions []quiz.Question `json:"questions"`
}

func (d quizDoc) toDomain() quiz.Quiz {
	id := d.ServerID
	if id == "" {
		id = d.ID
	}
	return quiz.Quiz{ID: id, Title: d.Title, Questions: d.Questions}
}

func toDoc(q quiz.Quiz) quizDoc {
	return quizDoc{Title: q.Title, Questions: q.Questions}
}

// List fetches all quizzes.
func (c *Client) List(ctx context.Context) ([]quiz.Quiz, error) {
	var docs []quizDoc
	if err := c.do(ctx, http.MethodGet, c.quizzesURL(), nil, &docs); err != nil {
		return nil, err
	}
	out := make([]quiz.Quiz, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Get fetches a single quiz by id. Returns an error matching ErrNotFound when
// the upstream answers 404.
func (c *Client) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	if id == "" {
		return nil, fmt.Errorf("quiz id required")
	}
	var doc quizDoc
	if err := c.do(ctx, http.MethodGet, c.quizURL(id), nil, &doc); err != nil {
		return nil, err
	}
	q := doc.toDomain()
	return &q, nil
}

// Create persists a new quiz; the upstream assigns its id.
func (c *Client) Create(ctx context.Context, q quiz.Quiz) (*quiz.Quiz, error) {
	var doc quizDoc
	if err := c.do(ctx, http.MethodPost, c.quizzesURL(), toDoc(q), &doc); err != nil {
		return nil, err
	}
	created := doc.toDomain()
	return &created, nil
}

// Update replaces the quiz stored under id.
func (c *Client) Update(ctx context.Context, id string, q quiz.Quiz) (*quiz.Quiz, error) {
	if id == "" {
		return nil, fmt.Errorf("quiz id required for update")
	}
	var doc quizDoc
	if err := c.do(ctx, http.MethodPut, c.quizURL(id), toDoc(q), &doc); err != nil {
		return nil, err
	}
	updated := doc.toDomain()
	return &updated, nil
}

// Upsert updates when the quiz already carries a server-looking id and
// creates otherwise. A failed update falls back to create, matching the
// behavior quizzes authored against an older backend rely on.
func (c *Client) Upsert(ctx context.Context, q quiz.Quiz) (*quiz.Quiz, error) {
	if len(q.ID) > 6 {
		if updated, err := c.Update(ctx, q.ID, q); err == nil {
			return updated, nil
		}
	}
	return c.Create(ctx, q)
}

// Delete removes the quiz stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("quiz id required")
	}
	return c.do(ctx, http.MethodDelete, c.quizURL(id), nil, nil)
}

func (c *Client) quizzesURL() string {
	return c.baseURL + "/quizzes"
}

func (c *Client) quizURL(id string) string {
	return c.quizzesURL() + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quiz api request: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse reads the body exactly once. A body that claims JSON but
// does not parse degrades to its raw text serving as an opaque error message.
func decodeResponse(resp *http.Response, out any) error {
	text, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(text, isJSON, resp.Status)}
	}
	if out == nil {
		return nil
	}
	if !isJSON || !json.Valid(text) {
		return &Error{
			Status:    resp.StatusCode,
			Message:   strings.TrimSpace(string(text)),
			Malformed: true,
		}
	}
	if err := json.Unmarshal(text, out); err != nil {
		return &Error{
			Status:    resp.StatusCode,
			Message:   strings.TrimSpace(string(text)),
			Malformed: true,
		}
	}
	return nil
}

func errorMessage(text []byte, isJSON bool, fallback string) string {
	if isJSON {
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(text, &payload); err == nil && payload.Message != "" {
			return payload.Message
		}
	}
	if trimmed := strings.TrimSpace(string(text)); trimmed != "" {
		return trimmed
	}
	return fallback
}
