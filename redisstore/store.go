package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ngio"

// ErrNoClient is returned by New when no Redis client was provided.
var ErrNoClient = errors.New("redisstore: redis client is required")

// errRedisUnavailable wraps transport-level Redis failures.
var errRedisUnavailable = errors.New("redisstore: redis unavailable")

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix overrides the "ngio" namespace prepended to every key.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL bounds the lifetime of a remembered session id. Zero keeps entries
// until overwritten.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// Store defines a public type used by the redisstore package.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(redisClient *redis.Client, opts ...Option) (*Store, error) {
	if redisClient == nil {
		return nil, ErrNoClient
	}

	s := &Store{
		redis:  redisClient,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// GetItem describes the getitem operation and its observable behavior.
//
// GetItem may return an error when input validation, dependency calls, or security checks fail.
// GetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return value, nil
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}
