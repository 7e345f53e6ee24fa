// Package cache stores read results under explicit keys and drops them by tag
// when a write makes them stale.
package cache

import (
	"context"
	"strings"
)

// Cache is a key/value store where every entry carries invalidation tags.
type Cache interface {
	// Get decodes the entry for key into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores value under key and indexes it by tags.
	Set(ctx context.Context, key string, value any, tags ...string) error
	// Invalidate drops every entry indexed by any of tags and moves their version on.
	Invalidate(ctx context.Context, tags ...string) error
	// Version returns a token that changes whenever any of tags is invalidated.
	Version(ctx context.Context, tags ...string) (uint64, error)
	// SetIfCurrent is Set guarded by a Version taken before the value was
	// loaded. It stores nothing and reports false when any of tags was
	// invalidated since, so a slow read cannot cache what a write replaced.
	SetIfCurrent(ctx context.Context, version uint64, key string, value any, tags ...string) (bool, error)
	Close() error
}

// Tag builds an invalidation tag from path segments, e.g. Tag("tasks", "7") is "tasks/7".
func Tag(parts ...string) string {
	return strings.Join(parts, "/")
}
