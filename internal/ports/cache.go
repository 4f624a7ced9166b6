package ports

import (
	"context"
	"time"
)

// Cache is a key-value capability used for content-addressed classifier
// results. A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
