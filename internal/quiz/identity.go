package quiz

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// fallbackQuizToken replaces the quiz id inside synthesized keys when the
// quiz has not been assigned one yet.
const fallbackQuizToken = "local"

// Stamper assigns every question of a freshly loaded quiz a key that stays
// stable for the lifetime of one attempt, so answers can be addressed by it.
// Stamp must run exactly once per quiz load; re-stamping mid-attempt would
// orphan every answer already recorded.
type Stamper struct {
	now    func() time.Time
	suffix func() string
}

// NewStamper returns a Stamper backed by the wall clock and a random suffix
// source. Tests inject both through NewStamperWith.
func NewStamper() *Stamper {
	return NewStamperWith(time.Now, randomSuffix)
}

// NewStamperWith builds a Stamper with explicit time and suffix sources.
func NewStamperWith(now func() time.Time, suffix func() string) *Stamper {
	return &Stamper{now: now, suffix: suffix}
}

// Stamp fills in QID for every question of the quiz in place. Identifiers
// already present on the question are reused, checked in priority order:
// client-supplied id, question id, server-assigned id. Questions without any
// id get a synthesized key. Within one quiz all resulting keys are pairwise
// distinct; a colliding pre-existing id falls through to synthesis.
func (s *Stamper) Stamp(q *Quiz) {
	seen := make(map[string]struct{}, len(q.Questions))
	for i := range q.Questions {
		qid := s.pick(q.Questions[i], q.ID, i, seen)
		q.Questions[i].QID = qid
		seen[qid] = struct{}{}
	}
}

func (s *Stamper) pick(q Question, quizID string, index int, seen map[string]struct{}) string {
	for _, candidate := range []string{q.ClientID, q.ID, q.ServerID} {
		if candidate == "" {
			continue
		}
		if _, taken := seen[candidate]; taken {
			break
		}
		return candidate
	}
	for {
		key := s.synthesize(quizID, index)
		if _, taken := seen[key]; !taken {
			return key
		}
	}
}

// synthesize builds "{quizID}-q-{index}-{timestamp}-{random}". The "-q-{i}-"
// segment is load-bearing: result reconciliation pattern-matches on it when a
// stored answer key no longer matches any live identifier.
func (s *Stamper) synthesize(quizID string, index int) string {
	token := quizID
	if token == "" {
		token = fallbackQuizToken
	}
	return fmt.Sprintf("%s-q-%d-%d-%s", token, index, s.now().UnixMilli(), s.suffix())
}

func randomSuffix() string {
	raw := strconv.FormatUint(rand.Uint64(), 36)
	if len(raw) < 6 {
		raw = raw + "000000"
	}
	return raw[:6]
}
