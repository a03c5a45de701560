package cache

import (
	"context"
	"time"

	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Fetch reads key from c and reports the hit or miss to the cache hooks.
func Fetch(ctx context.Context, c Cache, keyType, key string) ([]byte, bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit, nil
}

// Store writes data under key and reports the write to the cache hooks.
func Store(ctx context.Context, c Cache, keyType, key string, data []byte, ttl time.Duration) error {
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
