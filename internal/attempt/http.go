package attempt

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/quiz/rest"
	httperrors "github.com/quizdeck/quizdeck/pkg/http/errors"
)

// SessionCookie carries the UI session id when the client does not send the
// X-Session-ID header. A missing session gets one minted on first contact.
const SessionCookie = "quizdeck_session"

// HTTPHandlers exposes the quiz-taking flow over REST.
type HTTPHandlers struct {
	manager *Manager
	repo    quiz.Repository
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for attempt endpoints.
func NewHTTPHandlers(manager *Manager, repo quiz.Repository, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		repo:    repo,
		logger:  logger.With().Str("component", "attempt_http").Logger(),
	}
}

// questionView is a question as shown to the participant: stamped identity,
// no reference answer.
type questionView struct {
	QID     string   `json:"qid"`
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

type attemptResponse struct {
	AttemptID string         `json:"attemptId"`
	QuizID    string         `json:"quizId"`
	Title     string         `json:"title"`
	Questions []questionView `json:"questions"`
	Progress  ProgressUpdate `json:"progress"`
}

// Start handles POST /v1/quizzes/{id}/attempts.
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	quizID := r.PathValue("id")

	att, err := h.manager.Start(r.Context(), sessionID, quizID)
	if err != nil {
		h.respondStartError(w, quizID, err)
		return
	}
	attemptsStarted.Inc()

	views := make([]questionView, 0, len(att.Quiz.Questions))
	for _, q := range att.Quiz.Questions {
		views = append(views, questionView{QID: q.QID, Type: q.Type, Text: q.Text, Options: q.Options})
	}
	respondJSON(w, http.StatusCreated, attemptResponse{
		AttemptID: att.ID,
		QuizID:    att.Quiz.ID,
		Title:     att.Quiz.Title,
		Questions: views,
		Progress:  ProgressUpdate{Total: len(views)},
	})
}

func (h *HTTPHandlers) respondStartError(w http.ResponseWriter, quizID string, err error) {
	var apiErr *rest.Error
	switch {
	case errors.Is(err, rest.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	case errors.Is(err, ErrSuperseded):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeStaleAttempt, "A newer quiz load superseded this one")
	case errors.As(err, &apiErr) && apiErr.Malformed:
		h.logger.Error().Err(err).Str("quiz_id", quizID).Msg("malformed upstream response")
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeMalformedResponse, apiErr.Message)
	case errors.As(err, &apiErr):
		h.logger.Error().Err(err).Str("quiz_id", quizID).Msg("upstream error loading quiz")
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeUpstreamError, apiErr.Message)
	default:
		h.logger.Error().Err(err).Str("quiz_id", quizID).Msg("failed to start attempt")
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeUpstreamError, "Failed to load quiz")
	}
}

type answerRequest struct {
	Value *quiz.Value `json:"value"`
}

// RecordAnswer handles PUT /v1/attempts/{id}/answers/{qid}.
func (h *HTTPHandlers) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	attemptID := r.PathValue("id")
	qid := r.PathValue("qid")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Value == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "value is required", "value")
		return
	}

	progress, err := h.manager.Answer(attemptID, qid, *req.Value)
	if err != nil {
		switch {
		case errors.Is(err, ErrAttemptNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeAttemptNotFound, "Attempt not found")
		case errors.Is(err, ErrUnknownQuestion):
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Unknown question identifier")
		default:
			httperrors.RespondInternalError(w, "Failed to record answer")
		}
		return
	}
	answersRecorded.Inc()
	respondJSON(w, http.StatusOK, progress)
}

// Progress handles GET /v1/attempts/{id}/progress.
func (h *HTTPHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.manager.Progress(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeAttemptNotFound, "Attempt not found")
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// Submit handles POST /v1/attempts/{id}/submit.
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	res, err := h.manager.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeAttemptNotFound, "Attempt not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to store result")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSubmitFailed, "Failed to store result")
		return
	}
	attemptsSubmitted.Inc()
	if res.Total > 0 {
		scorePercent.Observe(float64(res.Score) * 100 / float64(res.Total))
	}
	respondJSON(w, http.StatusOK, res)
}

// Discard handles DELETE /v1/attempts/{id}.
func (h *HTTPHandlers) Discard(w http.ResponseWriter, r *http.Request) {
	att, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeAttemptNotFound, "Attempt not found")
		return
	}
	h.manager.Discard(att.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

// EndSession handles DELETE /v1/session. Drops the active attempt and every
// stored result for the caller's session.
func (h *HTTPHandlers) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	if err := h.manager.EndSession(r.Context(), sessionID); err != nil {
		h.logger.Error().Err(err).Msg("failed to clear session")
		httperrors.RespondInternalError(w, "Failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resultResponse struct {
	QuizID    string           `json:"quizId"`
	Title     string           `json:"title"`
	Date      string           `json:"date"`
	Score     int              `json:"score"`
	Total     int              `json:"total"`
	Percent   int              `json:"percent"`
	Questions []QuestionResult `json:"questions"`
}

// LastResult handles GET /v1/quizzes/{id}/result. The stored answer keys may
// predate the current quiz copy, so the breakdown reconciles them by
// identifier and position.
func (h *HTTPHandlers) LastResult(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	quizID := r.PathValue("id")

	res, err := h.manager.LastResult(r.Context(), sessionID, quizID)
	if err != nil {
		h.logger.Error().Err(err).Str("quiz_id", quizID).Msg("result store read failed")
		httperrors.RespondInternalError(w, "Failed to load result")
		return
	}
	if res == nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeResultNotFound, "No result for this quiz yet")
		return
	}

	loaded, err := h.repo.Get(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
			return
		}
		h.logger.Error().Err(err).Str("quiz_id", quizID).Msg("upstream error loading quiz for result view")
		httperrors.RespondUpstreamError(w, httperrors.ErrCodeUpstreamError, "Failed to load quiz")
		return
	}

	percent := 0
	if res.Total > 0 {
		percent = int(math.Round(float64(res.Score) * 100 / float64(res.Total)))
	}
	respondJSON(w, http.StatusOK, resultResponse{
		QuizID:    quizID,
		Title:     loaded.Title,
		Date:      res.Date.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Score:     res.Score,
		Total:     res.Total,
		Percent:   percent,
		Questions: Breakdown(loaded, res.Answers),
	})
}

// sessionID resolves the UI session: explicit header first, then cookie,
// else a fresh id is minted and set as a session cookie.
func (h *HTTPHandlers) sessionID(w http.ResponseWriter, r *http.Request) string {
	if sid := r.Header.Get("X-Session-ID"); sid != "" {
		return sid
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
