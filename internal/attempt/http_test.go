package attempt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/quiz/rest"
)

func newFlowServer(t *testing.T, repo quiz.Repository) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)
	manager := NewManager(repo, newStubResultStore(), ManagerOptions{}, logger)
	handlers := NewHTTPHandlers(manager, repo, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/quizzes/{id}/attempts", handlers.Start)
	mux.HandleFunc("GET /v1/quizzes/{id}/result", handlers.LastResult)
	mux.HandleFunc("PUT /v1/attempts/{id}/answers/{qid}", handlers.RecordAnswer)
	mux.HandleFunc("GET /v1/attempts/{id}/progress", handlers.Progress)
	mux.HandleFunc("POST /v1/attempts/{id}/submit", handlers.Submit)
	mux.HandleFunc("DELETE /v1/attempts/{id}", handlers.Discard)
	mux.HandleFunc("DELETE /v1/session", handlers.EndSession)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "sess-http")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAttemptFlowOverHTTP(t *testing.T) {
	repo := &stubRepo{get: func(ctx context.Context, id string) (*quiz.Quiz, error) {
		return sampleQuiz(), nil
	}}
	srv := newFlowServer(t, repo)

	var started attemptResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/quizzes/geo1/attempts", nil, &started)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, started.Questions, 2)
	for _, qv := range started.Questions {
		assert.NotEmpty(t, qv.QID)
	}

	var progress ProgressUpdate
	resp = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/v1/attempts/%s/answers/%s", srv.URL, started.AttemptID, started.Questions[0].QID),
		map[string]any{"value": 0}, &progress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 50, progress.Percent)

	resp = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/v1/attempts/%s/answers/%s", srv.URL, started.AttemptID, started.Questions[1].QID),
		map[string]any{"value": "True"}, &progress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, progress.Percent)

	var res Result
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/attempts/"+started.AttemptID+"/submit", nil, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 2, res.Total)

	var view resultResponse
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/quizzes/geo1/result", nil, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, view.Score)
	assert.Equal(t, 100, view.Percent)
	require.Len(t, view.Questions, 2)
	assert.True(t, view.Questions[0].Correct)
	assert.Equal(t, "Paris", view.Questions[0].GivenDisplay)
}

func TestStartAttemptQuizNotFound(t *testing.T) {
	repo := &stubRepo{get: func(ctx context.Context, id string) (*quiz.Quiz, error) {
		return nil, &rest.Error{Status: http.StatusNotFound, Message: "no such quiz"}
	}}
	srv := newFlowServer(t, repo)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/quizzes/missing/attempts", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecordAnswerRequiresValue(t *testing.T) {
	repo := &stubRepo{get: func(ctx context.Context, id string) (*quiz.Quiz, error) {
		return sampleQuiz(), nil
	}}
	srv := newFlowServer(t, repo)

	var started attemptResponse
	doJSON(t, http.MethodPost, srv.URL+"/v1/quizzes/geo1/attempts", nil, &started)

	resp := doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/v1/attempts/%s/answers/%s", srv.URL, started.AttemptID, started.Questions[0].QID),
		map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResultBeforeSubmitIs404(t *testing.T) {
	repo := &stubRepo{get: func(ctx context.Context, id string) (*quiz.Quiz, error) {
		return sampleQuiz(), nil
	}}
	srv := newFlowServer(t, repo)

	resp := doJSON(t, http.MethodGet, srv.URL+"/v1/quizzes/geo1/result", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndSessionDropsResults(t *testing.T) {
	repo := &stubRepo{get: func(ctx context.Context, id string) (*quiz.Quiz, error) {
		return sampleQuiz(), nil
	}}
	srv := newFlowServer(t, repo)

	var started attemptResponse
	doJSON(t, http.MethodPost, srv.URL+"/v1/quizzes/geo1/attempts", nil, &started)
	doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/v1/attempts/%s/answers/%s", srv.URL, started.AttemptID, started.Questions[0].QID),
		map[string]any{"value": 0}, nil)
	doJSON(t, http.MethodPost, srv.URL+"/v1/attempts/"+started.AttemptID+"/submit", nil, nil)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/v1/session", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/quizzes/geo1/result", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/attempts/"+started.AttemptID+"/progress", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "the active attempt goes with the session")
}

func TestEmptyFreeTextCountsTowardProgress(t *testing.T) {
	repo := &stubRepo{get: func(ctx context.Context, id string) (*quiz.Quiz, error) {
		return &quiz.Quiz{
			ID:    "text1",
			Title: "Essay",
			Questions: []quiz.Question{
				{ID: "q1", Type: quiz.TypeFreeText, Text: "Why?"},
			},
		}, nil
	}}
	srv := newFlowServer(t, repo)

	var started attemptResponse
	doJSON(t, http.MethodPost, srv.URL+"/v1/quizzes/text1/attempts", nil, &started)

	var progress ProgressUpdate
	resp := doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/v1/attempts/%s/answers/%s", srv.URL, started.AttemptID, started.Questions[0].QID),
		map[string]any{"value": ""}, &progress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, progress.Percent, "presence, not truthiness, marks a question answered")
}
