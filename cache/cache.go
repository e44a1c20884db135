/*
Package cache provides the computed-summary cache.

PURPOSE:
  Loan summaries are pure functions of a snapshot, so a summary cached under
  a fingerprint of its snapshot can never be stale: a new sync of the loan
  changes the fingerprint and misses the cache. The cache is a read-through
  optimization for list-heavy screens, never a source of truth, and every
  cache failure degrades to recomputation.
*/
package cache

import (
	"context"
	"time"
)

// Cache stores serialized summaries keyed by snapshot fingerprint.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
