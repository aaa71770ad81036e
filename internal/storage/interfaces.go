package storage

import (
	"context"
	"time"

	"raydium-sniper/internal/domain"
)

// StagingStore is a fixed-delay multiset buffer between discovery and
// enrichment. Every discovered address sits for at least the grace
// period before enrichment is attempted; duplicate enqueues of the same
// address are distinct entries. Implementations must support concurrent
// Enqueue (listener side) and DequeueOlderThan/Remove (scheduler side).
type StagingStore interface {
	// Enqueue stages a discovered mint address with its discovery time (ms).
	Enqueue(ctx context.Context, address string, discoveredAt int64) error

	// DequeueOlderThan returns all entries whose age is at least minAge.
	// Entries are not removed; ties may be returned in any order.
	DequeueOlderThan(ctx context.Context, minAge time.Duration) ([]*domain.StagedToken, error)

	// Remove deletes an entry by its store-assigned ID.
	// Returns ErrNotFound if the entry does not exist.
	Remove(ctx context.Context, id int64) error
}

// AlertArchive is an append-only sink for delivered alerts.
type AlertArchive interface {
	// Insert records a delivered alert.
	Insert(ctx context.Context, a *domain.Alert) error
}
