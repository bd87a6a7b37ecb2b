package cache

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
)

// Redis drops derived risk views stored in Redis
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var _ interfaces.CacheInvalidator = &Redis{}

type Option func(*Redis)

// WithKeyPrefix namespaces every key, e.g. "staging:"
func WithKeyPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// New connects to a Redis server
func New(addr, password string, db int, opts ...Option) *Redis {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewWithClient wraps an existing client, such as a cluster client
func NewWithClient(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Invalidate deletes the given keys. Missing keys are not an error.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return goerr.Wrap(err, "failed to invalidate cache", goerr.V("keys", prefixed))
	}
	return nil
}

// Ping checks connectivity
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return goerr.Wrap(err, "failed to ping redis")
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
