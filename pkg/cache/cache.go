package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value store with TTL support.
//
// TTL passed to Set:
//   - positive: the entry expires after that duration
//   - zero: the backend default applies
//   - negative: the entry never expires
type Cache[V any] interface {
	// Get returns ErrNotFound for missing, expired or unreadable entries.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Marshaler converts values to bytes for backends that store bytes
// (File, Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSONMarshaler encodes values with encoding/json. It is the default.
type JSONMarshaler[V any] struct{}

func (JSONMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSONMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// MsgpackMarshaler encodes values with MessagePack.
type MsgpackMarshaler[V any] struct{}

func (MsgpackMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (MsgpackMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// BytesMarshaler passes []byte values through unchanged.
type BytesMarshaler struct{}

func (BytesMarshaler) Marshal(v []byte) ([]byte, error)      { return v, nil }
func (BytesMarshaler) Unmarshal(data []byte) ([]byte, error) { return data, nil }

var loads singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses on the same key share a single call to fn.
// A value is stored only when fn succeeds; storing is best-effort.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := loads.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := res.(loaded[V])
	_ = c.Set(ctx, key, r.val, r.ttl)
	return r.val, nil
}

// resolveTTL maps the Set TTL convention onto an absolute expiry.
// The zero time means no expiry.
func resolveTTL(ttl, def time.Duration) time.Time {
	if ttl == 0 {
		ttl = def
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
