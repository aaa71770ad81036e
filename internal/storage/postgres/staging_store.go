package postgres

import (
	"context"
	"fmt"
	"time"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/storage"
)

// StagingStore implements storage.StagingStore using PostgreSQL.
// Entries live in the staged_tokens table; IDs come from a BIGSERIAL
// so duplicate discoveries of the same mint remain distinct rows.
type StagingStore struct {
	pool *Pool
}

// NewStagingStore creates a new StagingStore.
func NewStagingStore(pool *Pool) *StagingStore {
	return &StagingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StagingStore = (*StagingStore)(nil)

// Enqueue stages a discovered mint address with its discovery time (ms).
func (s *StagingStore) Enqueue(ctx context.Context, address string, discoveredAt int64) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO staged_tokens (mint_address, discovered_at)
		VALUES ($1, $2)
	`

	_, err := s.pool.Exec(ctx, query, address, discoveredAt)
	if err != nil {
		return fmt.Errorf("enqueue staged token: %w", err)
	}
	return nil
}

// DequeueOlderThan returns all entries whose age is at least minAge.
func (s *StagingStore) DequeueOlderThan(ctx context.Context, minAge time.Duration) ([]*domain.StagedToken, error) {
	cutoff := time.Now().Add(-minAge).UnixMilli()

	query := `
		SELECT id, mint_address, discovered_at
		FROM staged_tokens
		WHERE discovered_at <= $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("dequeue staged tokens: %w", err)
	}
	defer rows.Close()

	var result []*domain.StagedToken
	for rows.Next() {
		t := &domain.StagedToken{}
		if err := rows.Scan(&t.ID, &t.Address, &t.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("scan staged token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staged tokens: %w", err)
	}

	return result, nil
}

// Remove deletes an entry by ID. Returns ErrNotFound if it does not exist.
func (s *StagingStore) Remove(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM staged_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove staged token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
