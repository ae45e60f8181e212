package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const fileExt = ".cache"

// fileEnvelope is the on-disk record. ExpiresAt is a Unix timestamp;
// zero means the entry never expires.
type fileEnvelope struct {
	Value     []byte `msgpack:"value"`
	ExpiresAt int64  `msgpack:"expires_at"`
}

// File stores one file per key under a directory, named by the md5 of the
// key. Unreadable or expired files are removed on access and reported as
// ErrNotFound.
type File[V any] struct {
	dir        string
	marshaler  Marshaler[V]
	defaultTTL time.Duration
}

// FileOption configures the file cache.
type FileOption func(*fileOptions)

type fileOptions struct {
	defaultTTL time.Duration
}

// WithFileDefaultTTL sets the TTL used when Set receives zero. Default: 1 hour.
func WithFileDefaultTTL(d time.Duration) FileOption {
	return func(o *fileOptions) {
		o.defaultTTL = d
	}
}

// NewFile creates a file cache rooted at dir, creating it if needed.
// A nil marshaler selects JSON.
func NewFile[V any](dir string, m Marshaler[V], opts ...FileOption) (*File[V], error) {
	if dir == "" {
		return nil, errors.New("cache: file cache directory is empty")
	}
	o := &fileOptions{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(o)
	}
	if m == nil {
		m = JSONMarshaler[V]{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File[V]{dir: dir, marshaler: m, defaultTTL: o.defaultTTL}, nil
}

// Dir returns the cache directory.
func (f *File[V]) Dir() string { return f.dir }

func (f *File[V]) path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+fileExt)
}

// read returns the live envelope at p. Corrupt or expired files are deleted.
func (f *File[V]) read(p string) (fileEnvelope, error) {
	var env fileEnvelope

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return env, ErrNotFound
		}
		return env, err
	}
	if err := msgpack.Unmarshal(data, &env); err != nil {
		_ = os.Remove(p)
		return env, ErrNotFound
	}
	if env.ExpiresAt != 0 && env.ExpiresAt < time.Now().Unix() {
		_ = os.Remove(p)
		return env, ErrNotFound
	}
	return env, nil
}

func (f *File[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	p := f.path(key)
	env, err := f.read(p)
	if err != nil {
		return zero, err
	}
	v, err := f.marshaler.Unmarshal(env.Value)
	if err != nil {
		_ = os.Remove(p)
		return zero, ErrNotFound
	}
	return v, nil
}

func (f *File[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	data, err := f.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	env := fileEnvelope{Value: data}
	if exp := resolveTTL(ttl, f.defaultTTL); !exp.IsZero() {
		env.ExpiresAt = exp.Unix()
	}
	raw, err := msgpack.Marshal(env)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	tmp, err := os.CreateTemp(f.dir, "tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *File[V]) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *File[V]) Has(_ context.Context, key string) (bool, error) {
	_, err := f.read(f.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Clear removes every cache file in the directory.
func (f *File[V]) Clear(_ context.Context) error {
	files, err := filepath.Glob(filepath.Join(f.dir, "*"+fileExt))
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range files {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GC removes expired and corrupt files and reports how many were removed.
func (f *File[V]) GC(_ context.Context) (int, error) {
	files, err := filepath.Glob(filepath.Join(f.dir, "*"+fileExt))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, p := range files {
		if _, err := f.read(p); errors.Is(err, ErrNotFound) {
			removed++
		}
	}
	return removed, nil
}

func (f *File[V]) Close() error { return nil }

var _ Cache[any] = (*File[any])(nil)
