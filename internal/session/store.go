package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// RedisStore keeps session records in Redis with a TTL and serialises writers
// with a per-session lock.
type RedisStore struct {
	redis   *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	logger  zerolog.Logger
}

// NewRedisStore creates a state store backed by Redis.
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &RedisStore{
		redis:   client,
		ttl:     ttl,
		lockTTL: lockTTL,
		logger:  logger.With().Str("component", "session_store").Logger(),
	}
}

// Lock acquires the session lock. The returned function releases it only if
// it is still ours.
func (s *RedisStore) Lock(ctx context.Context, id uuid.UUID) (func() error, error) {
	key := lockKey(id)
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrBusy
	}

	unlock := func() error {
		return s.redis.Eval(context.WithoutCancel(ctx), unlockScript, []string{key}, lockValue).Err()
	}
	return unlock, nil
}

// Save writes rec and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, recordKey(rec.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Load returns ErrNotFound when the session expired or never existed.
func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	data, err := s.redis.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, nil
}

func recordKey(id uuid.UUID) string {
	return fmt.Sprintf("quiz:session:%s", id.String())
}

func lockKey(id uuid.UUID) string {
	return fmt.Sprintf("quiz:session:lock:%s", id.String())
}
