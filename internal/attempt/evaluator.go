package attempt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// Grade reports whether the given answer is correct for the question.
// Evaluation is independent per question and never errors; a malformed or
// missing answer is simply not correct.
//
// Rules per type:
//   - multiple choice / true-false: an answer must be present and its string
//     form must equal the reference answer's string form. The string compare
//     tolerates a numeric index arriving as "0" vs 0; true/false literals are
//     matched case-sensitively.
//   - free text: both the reference answer and the given answer must be
//     non-empty, compared after trimming and case-folding. A question without
//     a reference answer is never counted correct and never penalized.
func Grade(q quiz.Question, given quiz.Value, answered bool) bool {
	switch q.Type {
	case quiz.TypeMultipleChoice, quiz.TypeTrueFalse:
		return answered && q.Answer != nil && given.String() == q.Answer.String()
	case quiz.TypeFreeText:
		if !q.HasAnswer() || !answered || given == "" {
			return false
		}
		return foldText(given.String()) == foldText(q.Answer.String())
	default:
		return false
	}
}

func foldText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Submit grades the quiz against the answer store and produces the Result
// record. Unanswered questions count toward total but never toward score.
// Two calls with identical inputs yield the same score; only Date reflects
// the new instant.
func Submit(q *quiz.Quiz, store *AnswerStore, now time.Time) Result {
	correct := 0
	for _, question := range q.Questions {
		given, ok := store.Get(question.QID)
		if Grade(question, given, ok) {
			correct++
		}
	}
	return Result{
		QuizID:  q.ID,
		Date:    now,
		Answers: store.Snapshot(),
		Score:   correct,
		Total:   len(q.Questions),
	}
}

// FindGiven looks up the stored answer for the question at position index
// when rendering a past Result. The stored keys may predate the current
// identity stamping (a reload re-synthesizes timestamps and suffixes), so
// lookup falls through a priority chain:
//
//  1. any identifier the live question carries, stamped key first;
//  2. any stored key encoding the same position, "-q-{index}-" or a
//     "-q-{index}" suffix;
//  3. the literal string form of the numeric index.
//
// No match means the question is shown as unanswered.
func FindGiven(q quiz.Question, index int, answers map[string]quiz.Value) (quiz.Value, bool) {
	if len(answers) == 0 {
		return "", false
	}

	for _, key := range []string{q.QID, q.ClientID, q.ID, q.ServerID} {
		if key == "" {
			continue
		}
		if v, ok := answers[key]; ok {
			return v, true
		}
	}

	positional := regexp.MustCompile(fmt.Sprintf("-q-%d(-|$)", index))
	for key, v := range answers {
		if positional.MatchString(key) {
			return v, true
		}
	}

	if v, ok := answers[strconv.Itoa(index)]; ok {
		return v, true
	}
	return "", false
}

// QuestionResult is one row of the result breakdown view.
type QuestionResult struct {
	Index          int    `json:"index"`
	Text           string `json:"text"`
	Type           string `json:"type"`
	Answered       bool   `json:"answered"`
	Correct        bool   `json:"correct"`
	GivenDisplay   string `json:"givenDisplay"`
	CorrectDisplay string `json:"correctDisplay"`
}

const (
	noAnswerGiven = "(No answer provided)"
	noAnswerSet   = "(No correct answer set)"
)

// Breakdown reconstructs the per-question view of a stored Result against the
// current copy of the quiz, reconciling answer keys through FindGiven.
// Multiple-choice indices are resolved to option text for display.
func Breakdown(q *quiz.Quiz, answers map[string]quiz.Value) []QuestionResult {
	rows := make([]QuestionResult, 0, len(q.Questions))
	for i, question := range q.Questions {
		given, ok := FindGiven(question, i, answers)
		row := QuestionResult{
			Index:          i,
			Text:           question.Text,
			Type:           question.Type,
			Answered:       ok,
			Correct:        Grade(question, given, ok),
			GivenDisplay:   displayGiven(question, given, ok),
			CorrectDisplay: displayReference(question),
		}
		rows = append(rows, row)
	}
	return rows
}

func displayGiven(q quiz.Question, given quiz.Value, answered bool) string {
	if !answered || given == "" {
		return noAnswerGiven
	}
	if q.Type == quiz.TypeMultipleChoice {
		if idx, ok := given.Index(); ok && idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	return given.String()
}

func displayReference(q quiz.Question) string {
	if q.Answer == nil {
		return noAnswerSet
	}
	if q.Type == quiz.TypeMultipleChoice {
		if idx, ok := q.Answer.Index(); ok && idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	if *q.Answer == "" {
		return noAnswerSet
	}
	return q.Answer.String()
}
