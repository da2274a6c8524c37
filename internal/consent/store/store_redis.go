package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio/internal/consent/models"
	"portfolio/pkg/platform/sentinel"
)

const consentKeyPrefix = "consent:"

// RedisStore keeps each record as a JSON value whose key expires when the
// record's trust window ends, so expired records vanish on their own.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore constructs a Redis-backed consent store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(kind models.Kind, key string) string {
	return consentKeyPrefix + string(kind) + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, kind models.Kind, key string) (*models.ConsentRecord, error) {
	raw, err := s.client.Get(ctx, redisKey(kind, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s consent: %w", kind, err)
	}
	var rec models.ConsentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s consent: %w", kind, err)
	}
	return &rec, nil
}

// Put stores record with a TTL equal to its remaining trust window. A record
// that is already expired removes any previous value instead.
func (s *RedisStore) Put(ctx context.Context, kind models.Kind, record *models.ConsentRecord) error {
	if record == nil || record.SubjectKey == "" {
		return fmt.Errorf("put %s consent: empty subject key", kind)
	}
	ttl := time.Until(record.ExpiresAt())
	if ttl <= 0 {
		return s.Delete(ctx, kind, record.SubjectKey)
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s consent: %w", kind, err)
	}
	if err := s.client.Set(ctx, redisKey(kind, record.SubjectKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("put %s consent: %w", kind, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, kind models.Kind, key string) error {
	if err := s.client.Del(ctx, redisKey(kind, key)).Err(); err != nil {
		return fmt.Errorf("delete %s consent: %w", kind, err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires keys itself.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
