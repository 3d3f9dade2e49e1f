package result

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizdeck/quizdeck/internal/attempt"
)

const redisKeyPrefix = "quizdeck:result:"

// RedisStore keeps session results in Redis so the service can run with more
// than one replica behind a balancer. Keys carry the session TTL; Redis
// expiry is the session ending.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ attempt.ResultStore = (*RedisStore)(nil)

// NewRedisStore builds a store with the given TTL (default 30m).
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Save stores the result under the session's slot for its quiz.
func (s *RedisStore) Save(ctx context.Context, sessionID string, res attempt.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sessionID, res.QuizID), data, s.ttl).Err()
}

// Load returns the stored result or nil when absent or expired.
func (s *RedisStore) Load(ctx context.Context, sessionID, quizID string) (*attempt.Result, error) {
	data, err := s.client.Get(ctx, s.key(sessionID, quizID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var res attempt.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ClearSession drops every result the session produced.
func (s *RedisStore) ClearSession(ctx context.Context, sessionID string) error {
	pattern := redisKeyPrefix + sessionID + ":*"
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) key(sessionID, quizID string) string {
	return redisKeyPrefix + key(sessionID, quizID)
}
