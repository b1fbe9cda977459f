// Package cache stores byte payloads under string keys with a TTL.
//
// The metadata importer keeps successful page lookups here so repeated
// imports of the same article do not hit the relay again. Three backends
// exist:
//
//   - [FileCache]: one JSON file per entry under a directory (the CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: stores nothing, used when caching is disabled
//
// [Scoped] prefixes keys so several consumers can share one backend.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a key/value store with per-entry expiry. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string // file backend
	RedisAddr string // redis backend
}

// Open builds the backend named by opts.Backend. An empty backend means
// file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.RedisAddr)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, &UnknownBackendError{Name: opts.Backend}
	}
}

// UnknownBackendError reports an unsupported backend name.
type UnknownBackendError struct{ Name string }

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown cache backend %q (want file, redis or none)", e.Name)
}
