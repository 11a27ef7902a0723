// Package idempotency provides the durable key store used to deduplicate
// retried webhook deliveries. Keys carry a TTL and are reserved with a single
// atomic conditional write, never a separate get-then-set.
package idempotency

import (
	"context"
	"time"
)

// Store records idempotency keys with expiry.
//
// SetIfAbsent must be atomic: two concurrent calls with the same key must
// resolve to exactly one true. Delete exists so a caller can release a key
// when processing fails after the reservation, keeping a legitimate retry
// viable.
type Store interface {
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
