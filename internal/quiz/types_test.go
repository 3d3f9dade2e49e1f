package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshalNormalizesNumbers(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"type":"mcq","answer":0}`), &q))
	require.NotNil(t, q.Answer)
	assert.Equal(t, Value("0"), *q.Answer)

	idx, ok := q.Answer.Index()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestValueUnmarshalKeepsStrings(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"type":"tf","answer":"True"}`), &q))
	require.NotNil(t, q.Answer)
	assert.Equal(t, Value("True"), *q.Answer)

	_, ok := q.Answer.Index()
	assert.False(t, ok)
}

func TestValueUnmarshalRejectsObjects(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
}

func TestHasAnswer(t *testing.T) {
	assert.False(t, Question{}.HasAnswer())

	empty := Value("")
	assert.False(t, Question{Answer: &empty}.HasAnswer())

	set := Value("Paris")
	assert.True(t, Question{Answer: &set}.HasAnswer())
}
