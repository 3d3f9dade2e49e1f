package attempt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

var (
	// ErrAttemptNotFound marks an unknown or already-discarded attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrSuperseded marks a quiz load whose session started a newer load
	// before this one resolved; its response must not be applied.
	ErrSuperseded = errors.New("attempt load superseded")
	// ErrUnknownQuestion marks an answer addressed to a key the attempt's
	// quiz was never stamped with.
	ErrUnknownQuestion = errors.New("unknown question identifier")
)

// Attempt is one pass through taking a quiz, from load to submission.
type Attempt struct {
	ID        string
	SessionID string
	Quiz      *quiz.Quiz
	StartedAt time.Time

	answers *AnswerStore
}

// Manager owns the active attempts of all UI sessions. Each session has at
// most one active attempt; starting a new one discards the previous attempt
// and its answers. A generation counter per session guards against a stale
// quiz load being applied after the session has moved on.
type Manager struct {
	repo       quiz.Repository
	results    ResultStore
	stamper    *quiz.Stamper
	notifier   Notifier
	logger     zerolog.Logger
	now        func() time.Time
	sessionTTL time.Duration

	mu          sync.Mutex
	attempts    map[string]*Attempt
	activeBySID map[string]string
	generations map[string]uint64
}

// ManagerOptions configures optional Manager collaborators. A zero SessionTTL
// disables expiry; otherwise attempts older than the TTL are dropped lazily on
// next access.
type ManagerOptions struct {
	Stamper    *quiz.Stamper
	Notifier   Notifier
	Now        func() time.Time
	SessionTTL time.Duration
}

// NewManager wires an attempt manager over the quiz repository and the
// session-scoped result store.
func NewManager(repo quiz.Repository, results ResultStore, opts ManagerOptions, logger zerolog.Logger) *Manager {
	if opts.Stamper == nil {
		opts.Stamper = quiz.NewStamper()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		repo:        repo,
		results:     results,
		stamper:     opts.Stamper,
		notifier:    opts.Notifier,
		logger:      logger.With().Str("component", "attempt_manager").Logger(),
		now:         opts.Now,
		sessionTTL:  opts.SessionTTL,
		attempts:    make(map[string]*Attempt),
		activeBySID: make(map[string]string),
		generations: make(map[string]uint64),
	}
}

// Start fetches the quiz, stamps question identities and opens a fresh
// attempt for the session. The fetch happens outside the lock; if the session
// starts another load meanwhile, this one is discarded with ErrSuperseded.
func (m *Manager) Start(ctx context.Context, sessionID, quizID string) (*Attempt, error) {
	m.mu.Lock()
	m.generations[sessionID]++
	generation := m.generations[sessionID]
	m.mu.Unlock()

	loaded, err := m.repo.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[sessionID] != generation {
		m.logger.Debug().Str("session_id", sessionID).Str("quiz_id", quizID).Msg("discarding superseded quiz load")
		return nil, ErrSuperseded
	}

	m.stamper.Stamp(loaded)

	att := &Attempt{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Quiz:      loaded,
		StartedAt: m.now(),
		answers:   NewAnswerStore(),
	}
	if prev, ok := m.activeBySID[sessionID]; ok {
		delete(m.attempts, prev)
	}
	m.attempts[att.ID] = att
	m.activeBySID[sessionID] = att.ID

	m.logger.Info().
		Str("session_id", sessionID).
		Str("quiz_id", loaded.ID).
		Str("attempt_id", att.ID).
		Int("questions", len(loaded.Questions)).
		Msg("attempt started")
	return att, nil
}

// Answer records or overwrites an answer for the attempt and returns the
// resulting progress. qid must be one of the attempt's stamped keys.
func (m *Manager) Answer(attemptID, qid string, value quiz.Value) (ProgressUpdate, error) {
	m.mu.Lock()
	att, ok := m.lookupLocked(attemptID)
	if !ok {
		m.mu.Unlock()
		return ProgressUpdate{}, ErrAttemptNotFound
	}
	if !hasQuestion(att.Quiz, qid) {
		m.mu.Unlock()
		return ProgressUpdate{}, ErrUnknownQuestion
	}
	att.answers.Set(qid, value)
	progress := m.progressLocked(att)
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.PublishProgress(attemptID, progress)
	}
	return progress, nil
}

// Progress returns the current completion state of the attempt.
func (m *Manager) Progress(attemptID string) (ProgressUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.lookupLocked(attemptID)
	if !ok {
		return ProgressUpdate{}, ErrAttemptNotFound
	}
	return m.progressLocked(att), nil
}

// Get returns the attempt by id.
func (m *Manager) Get(attemptID string) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.lookupLocked(attemptID)
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return att, nil
}

// Submit grades the attempt and persists the Result to the session store.
// The attempt stays open, so a repeated submit regrades the same state.
func (m *Manager) Submit(ctx context.Context, attemptID string) (*Result, error) {
	m.mu.Lock()
	att, ok := m.lookupLocked(attemptID)
	if !ok {
		m.mu.Unlock()
		return nil, ErrAttemptNotFound
	}
	res := Submit(att.Quiz, att.answers, m.now())
	sessionID := att.SessionID
	m.mu.Unlock()

	if err := m.results.Save(ctx, sessionID, res); err != nil {
		return nil, err
	}
	m.logger.Info().
		Str("attempt_id", attemptID).
		Str("quiz_id", res.QuizID).
		Int("score", res.Score).
		Int("total", res.Total).
		Msg("attempt submitted")
	return &res, nil
}

// LastResult loads the most recent Result the session produced for the quiz.
func (m *Manager) LastResult(ctx context.Context, sessionID, quizID string) (*Result, error) {
	return m.results.Load(ctx, sessionID, quizID)
}

// EndSession drops the session's active attempt and every stored result.
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	m.Discard(sessionID)
	return m.results.ClearSession(ctx, sessionID)
}

// Discard drops the session's active attempt, if any.
func (m *Manager) Discard(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.activeBySID[sessionID]; ok {
		delete(m.attempts, id)
		delete(m.activeBySID, sessionID)
	}
}

// lookupLocked resolves an attempt, dropping it first if its session TTL has
// elapsed. Caller holds m.mu.
func (m *Manager) lookupLocked(attemptID string) (*Attempt, bool) {
	att, ok := m.attempts[attemptID]
	if !ok {
		return nil, false
	}
	if m.sessionTTL > 0 && m.now().Sub(att.StartedAt) > m.sessionTTL {
		delete(m.attempts, att.ID)
		if m.activeBySID[att.SessionID] == att.ID {
			delete(m.activeBySID, att.SessionID)
		}
		m.logger.Debug().Str("attempt_id", att.ID).Msg("attempt expired")
		return nil, false
	}
	return att, true
}

func (m *Manager) progressLocked(att *Attempt) ProgressUpdate {
	total := len(att.Quiz.Questions)
	return ProgressUpdate{
		Answered: att.answers.Len(),
		Total:    total,
		Percent:  att.answers.Progress(total),
	}
}

func hasQuestion(q *quiz.Quiz, qid string) bool {
	for _, question := range q.Questions {
		if question.QID == qid {
			return true
		}
	}
	return false
}
