package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix        = "senemedecine:revoked:"
	revokedSubjectKeyPrefix = "senemedecine:revoked-subject:"
)

// redisKV is the subset of *redis.Client the store needs.
type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisRevocationStore shares revocations across API instances. Each JTI is
// stored with a TTL matching the token's remaining lifetime.
type RedisRevocationStore struct {
	client redisKV
	now    func() time.Time
}

func NewRedisRevocationStore(client redisKV) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeSubject stores the cut-off as unix seconds, matching the resolution
// of the token's iat claim.
func (s *RedisRevocationStore) RevokeSubject(ctx context.Context, subject string, at, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedSubjectKeyPrefix+subject, at.Unix(), ttl).Err()
}

func (s *RedisRevocationStore) SubjectRevokedAt(ctx context.Context, subject string) (time.Time, error) {
	secs, err := s.client.Get(ctx, revokedSubjectKeyPrefix+subject).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}
