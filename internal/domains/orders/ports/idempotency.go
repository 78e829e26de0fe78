package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyConflict indicates the same key was used with a different checkout payload.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyInProgress indicates another submission holds the key and has not stored its order yet.
	ErrIdempotencyInProgress = errors.New("checkout with this idempotency key is still in progress")
)

// IdempotencyRecord associates a client-supplied key with the human id of the order it claims.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderRef    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists checkout keys so client retries replay the first result.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Claim stores the record atomically when the key is new and returns nil. When the key is
	// already held, the stored record is returned unchanged and nothing is written.
	Claim(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
	// Release deletes the key while it still points at orderRef, so a failed placement can be retried.
	Release(ctx context.Context, key, orderRef string) error
}

// IdempotencyPurger removes keys that are past their retention window.
type IdempotencyPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
