package result

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quizdeck/quizdeck/internal/attempt"
)

const defaultTTL = 30 * time.Minute

// resultKeyPrefix matches the storage key the browser UI historically used
// for its per-quiz result slot.
const resultKeyPrefix = "last_result_"

// MemoryStore is the in-process implementation of attempt.ResultStore, used
// when no Redis backend is configured. Entries expire lazily after the TTL,
// which stands in for the browser session ending.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

type entry struct {
	res       attempt.Result
	expiresAt time.Time
}

var _ attempt.ResultStore = (*MemoryStore)(nil)

// NewMemoryStore builds a store with the given TTL (default 30m).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStoreWith(ttl, time.Now)
}

// NewMemoryStoreWith allows tests to inject a clock.
func NewMemoryStoreWith(ttl time.Duration, now func() time.Time) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Save stores the result under the session's slot for its quiz, overwriting
// any previous attempt's result.
func (s *MemoryStore) Save(_ context.Context, sessionID string, res attempt.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(sessionID, res.QuizID)] = entry{res: res, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Load returns the stored result or nil when absent or expired.
func (s *MemoryStore) Load(_ context.Context, sessionID, quizID string) (*attempt.Result, error) {
	k := key(sessionID, quizID)

	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, k)
		s.mu.Unlock()
		return nil, nil
	}
	res := e.res
	return &res, nil
}

// ClearSession drops every result the session produced.
func (s *MemoryStore) ClearSession(_ context.Context, sessionID string) error {
	prefix := sessionID + ":"
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	return nil
}

func key(sessionID, quizID string) string {
	return sessionID + ":" + resultKeyPrefix + quizID
}
