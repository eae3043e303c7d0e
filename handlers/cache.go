package handlers

import "context"

// ListCache is the slice of the cache layer the handlers touch. The Redis
// implementation lives in the cache package; tests substitute their own.
type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context, keys ...string)
}
