// Package redis provides a Redis-backed staging store.
//
// Entries live in a sorted set scored by discovery time (ms) so that the
// age cutoff is a single ZRANGEBYSCORE. Members carry a sequence-assigned
// ID so duplicate discoveries of the same mint stay distinct; a hash maps
// ID back to member for removal.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/storage"
)

const (
	queueKey   = "staging:queue"   // ZSET member -> discovered_at score
	entriesKey = "staging:entries" // HASH id -> member
	seqKey     = "staging:seq"     // INCR counter for IDs
)

// StagingStore implements storage.StagingStore on Redis.
type StagingStore struct {
	client *redis.Client
}

// NewStagingStore creates a staging store backed by the given Redis client.
func NewStagingStore(client *redis.Client) *StagingStore {
	return &StagingStore{client: client}
}

// Compile-time interface check.
var _ storage.StagingStore = (*StagingStore)(nil)

// Enqueue stages a discovered mint address with its discovery time (ms).
func (s *StagingStore) Enqueue(ctx context.Context, address string, discoveredAt int64) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	id, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("next staging id: %w", err)
	}

	member := strconv.FormatInt(id, 10) + "|" + address

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, queueKey, redis.Z{Score: float64(discoveredAt), Member: member})
	pipe.HSet(ctx, entriesKey, strconv.FormatInt(id, 10), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue staged token: %w", err)
	}
	return nil
}

// DequeueOlderThan returns all entries whose age is at least minAge.
func (s *StagingStore) DequeueOlderThan(ctx context.Context, minAge time.Duration) ([]*domain.StagedToken, error) {
	cutoff := time.Now().Add(-minAge).UnixMilli()

	members, err := s.client.ZRangeByScoreWithScores(ctx, queueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("dequeue staged tokens: %w", err)
	}

	var result []*domain.StagedToken
	for _, z := range members {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, address, err := splitMember(member)
		if err != nil {
			continue
		}
		result = append(result, &domain.StagedToken{
			ID:           id,
			Address:      address,
			DiscoveredAt: int64(z.Score),
		})
	}

	return result, nil
}

// Remove deletes an entry by ID. Returns ErrNotFound if it does not exist.
func (s *StagingStore) Remove(ctx context.Context, id int64) error {
	field := strconv.FormatInt(id, 10)

	member, err := s.client.HGet(ctx, entriesKey, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("lookup staged token %d: %w", id, err)
	}

	pipe := s.client.TxPipeline()
	removed := pipe.ZRem(ctx, queueKey, member)
	pipe.HDel(ctx, entriesKey, field)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove staged token %d: %w", id, err)
	}
	if removed.Val() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// splitMember parses "<id>|<address>" members.
func splitMember(member string) (int64, string, error) {
	idx := strings.IndexByte(member, '|')
	if idx <= 0 || idx == len(member)-1 {
		return 0, "", fmt.Errorf("malformed staging member %q", member)
	}
	id, err := strconv.ParseInt(member[:idx], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed staging member id %q: %w", member, err)
	}
	return id, member[idx+1:], nil
}
