package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache and prefixes every key.
//
// It lets several clients share one backend without key collisions:
//
//	shared, _ := cache.NewFileCache(dir)
//	modrinth := cache.NewScoped(shared, "modrinth:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped returns a Cache view of inner whose keys are prefixed with prefix.
// A nil inner is replaced by a [NullCache].
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix of this view.
func (s *Scoped) Prefix() string { return s.prefix }

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the underlying backend.
func (s *Scoped) Close() error { return s.inner.Close() }

var _ Cache = (*Scoped)(nil)
