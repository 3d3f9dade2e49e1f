// Package catalog exposes quiz listing and authoring over REST, proxied to
// the upstream quiz API with pre-submission validation in front.
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/quiz/rest"
	httperrors "github.com/quizdeck/quizdeck/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for quiz CRUD.
type HTTPHandlers struct {
	repo   quiz.Repository
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for catalog endpoints.
func NewHTTPHandlers(repo quiz.Repository, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		repo:   repo,
		logger: logger.With().Str("component", "catalog_http").Logger(),
	}
}

// List handles GET /v1/quizzes.
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.repo.List(r.Context())
	if err != nil {
		h.respondUpstream(w, err, "Failed to load quizzes")
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// Get handles GET /v1/quizzes/{id}.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondUpstream(w, err, "Failed to load quiz")
		return
	}
	respondJSON(w, http.StatusOK, loaded)
}

// Create handles POST /v1/quizzes. The allow_empty query flag admits a quiz
// with zero questions; the authoring UI sets it after asking the author.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}
	created, err := h.repo.Create(r.Context(), *q)
	if err != nil {
		h.respondUpstream(w, err, "Failed to create quiz")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update handles PUT /v1/quizzes/{id}.
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}
	updated, err := h.repo.Update(r.Context(), r.PathValue("id"), *q)
	if err != nil {
		h.respondUpstream(w, err, "Failed to update quiz")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /v1/quizzes/{id}.
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondUpstream(w, err, "Failed to delete quiz")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *HTTPHandlers) decodeAndValidate(w http.ResponseWriter, r *http.Request) (*quiz.Quiz, bool) {
	var q quiz.Quiz
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return nil, false
	}
	opts := quiz.SaveOptions{AllowEmpty: r.URL.Query().Get("allow_empty") == "true"}
	if err := quiz.ValidateForSave(&q, opts); err != nil {
		var verr *quiz.ValidationError
		if errors.As(err, &verr) {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, verr.Message, verr.Field)
		} else {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
		}
		return nil, false
	}
	return &q, true
}

func (h *HTTPHandlers) respondUpstream(w http.ResponseWriter, err error, fallback string) {
	var apiErr *rest.Error
	switch {
	case errors.Is(err, rest.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	case errors.As(err, &apiErr) && apiErr.Malformed:
		h.logger.Error().Err(err).Msg("malformed upstream response")
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeMalformedResponse, apiErr.Message)
	case errors.As(err, &apiErr):
		h.logger.Error().Err(err).Msg("upstream error")
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeUpstreamError, apiErr.Message)
	default:
		h.logger.Error().Err(err).Msg(fallback)
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeUpstreamError, fallback)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
