package quiz

import (
	"fmt"
	"strings"
)

// ValidationError reports an authoring-side pre-submission failure. These are
// guards in front of the repository, not repository errors.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SaveOptions tunes ValidateForSave. AllowEmpty admits a quiz with zero
// questions (the authoring UI asks for confirmation before setting it).
type SaveOptions struct {
	AllowEmpty bool
}

// ValidateForSave normalizes a quiz in place and checks it is fit for
// persistence:
//
//   - the title must be non-empty after trimming;
//   - multiple-choice options are filtered of empty strings and at least two
//     must remain, with the answer index in bounds when set;
//   - true/false answers must be one of the two literals when set;
//   - free-text questions get an empty-string reference answer when absent.
//
// Stamped QIDs are stripped before persistence; they are attempt-local.
func ValidateForSave(q *Quiz, opts SaveOptions) error {
	q.Title = strings.TrimSpace(q.Title)
	if q.Title == "" {
		return &ValidationError{Field: "title", Message: "quiz title is required"}
	}
	if len(q.Questions) == 0 && !opts.AllowEmpty {
		return &ValidationError{Field: "questions", Message: "quiz has no questions"}
	}

	for i := range q.Questions {
		qq := &q.Questions[i]
		qq.QID = ""
		switch qq.Type {
		case TypeMultipleChoice:
			qq.Options = filterEmpty(qq.Options)
			if len(qq.Options) < 2 {
				return &ValidationError{
					Field:   fmt.Sprintf("questions[%d].options", i),
					Message: "multiple-choice questions need at least two non-empty options",
				}
			}
			if qq.Answer != nil {
				idx, ok := qq.Answer.Index()
				if !ok || idx < 0 || idx >= len(qq.Options) {
					return &ValidationError{
						Field:   fmt.Sprintf("questions[%d].answer", i),
						Message: "answer must be an index into options",
					}
				}
			}
		case TypeTrueFalse:
			if qq.Answer != nil && *qq.Answer != LiteralTrue && *qq.Answer != LiteralFalse {
				return &ValidationError{
					Field:   fmt.Sprintf("questions[%d].answer", i),
					Message: fmt.Sprintf("answer must be %q or %q", LiteralTrue, LiteralFalse),
				}
			}
		case TypeFreeText:
			if qq.Answer == nil {
				empty := Value("")
				qq.Answer = &empty
			}
		default:
			return &ValidationError{
				Field:   fmt.Sprintf("questions[%d].type", i),
				Message: fmt.Sprintf("unknown question type %q", qq.Type),
			}
		}
	}
	return nil
}

func filterEmpty(options []string) []string {
	out := options[:0]
	for _, opt := range options {
		if opt != "" {
			out = append(out, opt)
		}
	}
	return out
}
