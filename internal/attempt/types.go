package attempt

import (
	"context"
	"time"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// Result is the immutable record of one submission. It lives only in the
// session-scoped result store and is discarded when the session ends.
type Result struct {
	QuizID  string                `json:"quizId"`
	Date    time.Time             `json:"date"`
	Answers map[string]quiz.Value `json:"answers"`
	Score   int                   `json:"score"`
	Total   int                   `json:"total"`
}

// ResultStore is the ephemeral key-value store holding the last Result per
// quiz for a UI session. Implementations live in internal/result.
type ResultStore interface {
	Save(ctx context.Context, sessionID string, res Result) error
	Load(ctx context.Context, sessionID, quizID string) (*Result, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// ProgressUpdate reports completion state after an answer mutation. Percent
// drives the progress bar; it never affects scoring.
type ProgressUpdate struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// Notifier receives progress updates for live subscribers of an attempt.
type Notifier interface {
	PublishProgress(attemptID string, p ProgressUpdate)
}
