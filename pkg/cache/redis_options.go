package cache

import (
	"strings"
	"time"
)

// RedisOption configures the Redis cache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		prefix:     DefaultPrefix,
		defaultTTL: time.Hour,
	}
}

// WithRedisDefaultTTL sets the TTL used when Set receives zero. Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.defaultTTL = d
	}
}

// WithPrefix replaces the key prefix. A trailing colon is dropped so that
// "restina:" and "restina" are equivalent. An empty prefix makes Clear
// flush the whole database.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = strings.TrimSuffix(prefix, ":")
	}
}
