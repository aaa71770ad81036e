package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/storage"
)

// StagingStore is an in-memory implementation of storage.StagingStore.
type StagingStore struct {
	mu     sync.Mutex
	nextID int64
	data   map[int64]*domain.StagedToken

	// now is overridable for tests.
	now func() time.Time
}

// NewStagingStore creates a new in-memory staging store.
func NewStagingStore() *StagingStore {
	return &StagingStore{
		nextID: 1,
		data:   make(map[int64]*domain.StagedToken),
		now:    time.Now,
	}
}

// Compile-time interface check.
var _ storage.StagingStore = (*StagingStore)(nil)

// Enqueue stages a discovered mint address with its discovery time (ms).
func (s *StagingStore) Enqueue(_ context.Context, address string, discoveredAt int64) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.data[id] = &domain.StagedToken{
		ID:           id,
		Address:      address,
		DiscoveredAt: discoveredAt,
	}
	return nil
}

// DequeueOlderThan returns all entries whose age is at least minAge.
// Entries remain staged until Remove is called.
func (s *StagingStore) DequeueOlderThan(_ context.Context, minAge time.Duration) ([]*domain.StagedToken, error) {
	cutoff := s.now().Add(-minAge).UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.StagedToken
	for _, t := range s.data {
		if t.DiscoveredAt <= cutoff {
			entry := *t
			result = append(result, &entry)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Remove deletes an entry by its store-assigned ID.
func (s *StagingStore) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// Len returns the number of staged entries.
func (s *StagingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
