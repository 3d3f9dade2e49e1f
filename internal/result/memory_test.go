package result

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/attempt"
	"github.com/quizdeck/quizdeck/internal/quiz"
)

func sampleResult(quizID string) attempt.Result {
	return attempt.Result{
		QuizID:  quizID,
		Date:    time.UnixMilli(1700000000000),
		Answers: map[string]quiz.Value{"q1": "0"},
		Score:   1,
		Total:   2,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess1", sampleResult("geo1")))

	loaded, err := store.Load(ctx, "sess1", "geo1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Score)
	assert.Equal(t, quiz.Value("0"), loaded.Answers["q1"])
}

func TestMemoryStoreMissIsNilNotError(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	loaded, err := store.Load(context.Background(), "sess1", "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreScopedPerSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess1", sampleResult("geo1")))

	loaded, err := store.Load(ctx, "sess2", "geo1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "results are not shared across sessions")
}

func TestMemoryStoreOverwritesPerQuiz(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	first := sampleResult("geo1")
	require.NoError(t, store.Save(ctx, "sess1", first))

	second := sampleResult("geo1")
	second.Score = 2
	require.NoError(t, store.Save(ctx, "sess1", second))

	loaded, err := store.Load(ctx, "sess1", "geo1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Score, "a new submission replaces the last result")
}

func TestMemoryStoreExpires(t *testing.T) {
	now := time.UnixMilli(0)
	store := NewMemoryStoreWith(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess1", sampleResult("geo1")))

	now = now.Add(30 * time.Second)
	loaded, err := store.Load(ctx, "sess1", "geo1")
	require.NoError(t, err)
	assert.NotNil(t, loaded)

	now = now.Add(31 * time.Second)
	loaded, err = store.Load(ctx, "sess1", "geo1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "the session slot is gone after the TTL")
}

func TestMemoryStoreClearSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess1", sampleResult("geo1")))
	require.NoError(t, store.Save(ctx, "sess1", sampleResult("geo2")))
	require.NoError(t, store.Save(ctx, "sess2", sampleResult("geo1")))

	require.NoError(t, store.ClearSession(ctx, "sess1"))

	loaded, _ := store.Load(ctx, "sess1", "geo1")
	assert.Nil(t, loaded)
	loaded, _ = store.Load(ctx, "sess1", "geo2")
	assert.Nil(t, loaded)

	loaded, _ = store.Load(ctx, "sess2", "geo1")
	assert.NotNil(t, loaded, "other sessions keep their results")
}
