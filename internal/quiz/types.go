package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Question type constants. These are wire values shared with the browser UI
// and the upstream quiz API.
const (
	TypeMultipleChoice = "mcq"
	TypeTrueFalse      = "tf"
	TypeFreeText       = "text"
)

// True/false questions carry their answer as one of these literals,
// compared case-sensitively.
const (
	LiteralTrue  = "True"
	LiteralFalse = "False"
)

// Value is a loosely typed answer scalar. The browser sends multiple-choice
// answers as numeric option indices and everything else as strings; grading
// compares both in string form, so the canonical representation is a string.
type Value string

// UnmarshalJSON accepts a JSON string or number and normalizes to string form.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value(n.String())
		return nil
	}
	return fmt.Errorf("answer value must be a string or number, got %s", data)
}

func (v Value) String() string { return string(v) }

// Index interprets the value as a multiple-choice option index.
func (v Value) Index() (int, bool) {
	idx, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false
	}
	return idx, true
}

// IndexValue builds a Value from a multiple-choice option index.
func IndexValue(i int) Value {
	return Value(strconv.Itoa(i))
}

// Question is the client-side working copy of a quiz question. QID is the
// stamped per-attempt identity (see Stamper) and is never persisted upstream;
// ClientID, ID and ServerID are whatever identifier fields the upstream
// document happened to carry.
type Question struct {
	QID      string   `json:"qid,omitempty"`
	ClientID string   `json:"clientId,omitempty"`
	ID       string   `json:"id,omitempty"`
	ServerID string   `json:"_id,omitempty"`
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Options  []string `json:"options,omitempty"`
	Answer   *Value   `json:"answer,omitempty"`
}

// HasAnswer reports whether the question defines a non-empty reference answer.
func (q Question) HasAnswer() bool {
	return q.Answer != nil && *q.Answer != ""
}

// Quiz is the domain representation with the upstream id union already
// resolved into a single canonical ID (see the rest client).
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}
