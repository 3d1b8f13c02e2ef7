package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ums:session:"

// RedisStore keeps each record as a JSON string with a TTL matching its ExpiresAt.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("[RedisStore Get] %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("[RedisStore Get] corrupt session record: %w", err)
	}
	if record.Expired(s.now()) {
		return Record{}, apperrors.ErrSessionNotFound
	}
	return record, nil
}

func (s *RedisStore) Upsert(ctx context.Context, key string, record Record) error {
	var ttl time.Duration
	if !record.ExpiresAt.IsZero() {
		ttl = record.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, key)
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("[RedisStore Upsert] failed to encode record: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("[RedisStore Upsert] %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("[RedisStore Delete] %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts records itself once their TTL passes.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
