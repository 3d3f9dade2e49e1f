package attempt

import (
	"math"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// AnswerStore holds the participant's in-progress answers for one attempt,
// keyed by stamped question identity. A question is answered iff its key is
// present; an explicitly empty free-text submission therefore counts as
// answered. The store is not safe for concurrent use; the Manager serializes
// access under its lock.
type AnswerStore struct {
	answers map[string]quiz.Value
}

// NewAnswerStore returns an empty store. Each attempt gets a fresh one;
// nothing carries over between attempts.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[string]quiz.Value)}
}

// Set inserts or overwrites the answer for qid. Values are not validated
// against the question type here; the rendered input control restricts what
// can be submitted per type.
func (s *AnswerStore) Set(qid string, value quiz.Value) {
	s.answers[qid] = value
}

// Get returns the recorded answer and whether one exists.
func (s *AnswerStore) Get(qid string) (quiz.Value, bool) {
	v, ok := s.answers[qid]
	return v, ok
}

// Answered reports whether qid has an entry, regardless of its value.
func (s *AnswerStore) Answered(qid string) bool {
	_, ok := s.answers[qid]
	return ok
}

// Len returns the number of answered questions.
func (s *AnswerStore) Len() int {
	return len(s.answers)
}

// Progress returns round(100 * answered / total), or 0 for an empty quiz.
func (s *AnswerStore) Progress(total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(len(s.answers)) * 100 / float64(total)))
}

// Snapshot copies the current answers for inclusion in a Result.
func (s *AnswerStore) Snapshot() map[string]quiz.Value {
	out := make(map[string]quiz.Value, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}
