package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// ContentCache is a fast lookaside copy of stored content, keyed like the store.
type ContentCache interface {
	// Lookup returns the cached content for key, or ErrCacheMiss.
	Lookup(ctx context.Context, key CacheKey) (string, error)

	// Store caches content for key, overwriting any previous value.
	Store(ctx context.Context, key CacheKey, content string) error
}

// CacheKey identifies one generated content piece.
type CacheKey struct {
	QuestionID string
	Language   Language
	Type       ContentType
}

func (k CacheKey) String() string {
	return k.QuestionID + "/" + string(k.Language) + "/" + string(k.Type)
}

// CacheEntry is a stored content piece. At most one entry exists per key.
type CacheEntry struct {
	Key       CacheKey
	Content   string
	CreatedAt time.Time
}

// ContentRepository reads and writes generated content.
type ContentRepository interface {
	// GetContent returns the stored content for key, or ErrCacheMiss.
	GetContent(ctx context.Context, key CacheKey) (string, error)

	// SaveContent upserts entry. Saving twice for the same key leaves one row.
	SaveContent(ctx context.Context, entry CacheEntry) error
}
