package enrichment

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/observability"
)

// DefaultPollInterval is the wait between pool lookups while the pool
// is not yet indexed.
const DefaultPollInterval = 15 * time.Second

// PoolProvider resolves pool liquidity for a mint.
type PoolProvider interface {
	// PoolInfo returns (nil, nil) while no pool exists.
	PoolInfo(ctx context.Context, mint string) (*PoolMatch, error)
}

// MetadataProvider resolves token metadata for a mint.
type MetadataProvider interface {
	GetAttributes(ctx context.Context, mint string) (*TokenAttributes, error)
	GetInfo(ctx context.Context, mint string) (*TokenInfo, error)
}

// Fetcher polls the pool provider until the token's pool is indexed,
// then merges pool and metadata responses into a TokenRecord.
type Fetcher struct {
	pools    PoolProvider
	metadata MetadataProvider

	// sem caps concurrent provider calls across all in-flight
	// enrichments; both providers are rate limited.
	sem          *semaphore.Weighted
	pollInterval time.Duration
	logger       *log.Logger

	// now is overridable in tests.
	now func() time.Time
}

// FetcherConfig holds fetcher parameters.
type FetcherConfig struct {
	PollInterval time.Duration
	Logger       *log.Logger
}

// NewFetcher creates an enrichment fetcher. A single fetcher is shared
// by all scheduler handlers so the provider cap is process wide.
func NewFetcher(pools PoolProvider, metadata MetadataProvider, config FetcherConfig) *Fetcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		pools:        pools,
		metadata:     metadata,
		sem:          semaphore.NewWeighted(1),
		pollInterval: config.PollInterval,
		logger:       logger,
		now:          time.Now,
	}
}

// Fetch blocks until the token's pool appears, then returns the merged
// record. The poll loop is unbounded; cancel the context to abandon the
// token. Metadata failures degrade to empty fields, never an error.
func (f *Fetcher) Fetch(ctx context.Context, token *domain.StagedToken) (*domain.TokenRecord, error) {
	pool, err := f.awaitPool(ctx, token.Address)
	if err != nil {
		observability.DefaultMetrics.EnrichmentAbandoned.Inc()
		return nil, err
	}

	attrs := f.fetchAttributes(ctx, token.Address)
	info := f.fetchInfo(ctx, token.Address)

	record := &domain.TokenRecord{
		Name:            attrs.Name,
		Symbol:          attrs.Symbol,
		MintAddress:     token.Address,
		Decimals:        attrs.Decimals,
		ImageURL:        attrs.ImageURL,
		TotalSupply:     attrs.TotalSupply,
		PriceUSD:        attrs.PriceUSD,
		FDVUSD:          attrs.FDVUSD,
		MarketCapUSD:    attrs.MarketCapUSD,
		TotalReserveUSD: attrs.TotalReserveUSD,
		LiquidityUSD:    pool.TVL,
		LPLockedPct:     pool.BurnPercent,
		Top10HolderPct:  info.Top10HolderPct,
		DevHoldingPct:   info.DevHoldingPct,
		Socials:         info.Socials,
		DiscoveredAt:    token.DiscoveredAt,
		LastUpdated:     info.UpdatedAt,
	}
	// The provider's own timestamp wins; fetch time is the fallback
	// when the source omits it.
	if record.LastUpdated == 0 {
		record.LastUpdated = f.now().UnixMilli()
	}

	observability.DefaultMetrics.EnrichmentCompleted.Inc()
	return record, nil
}

// awaitPool polls the pool provider until a match appears. Empty
// responses are the steady state for a freshly created pool; transient
// errors are logged and retried on the next tick.
func (f *Fetcher) awaitPool(ctx context.Context, mint string) (*PoolMatch, error) {
	for {
		observability.DefaultMetrics.EnrichmentAttempts.Inc()

		pool, err := f.poolInfo(ctx, mint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.RecordProviderError("raydium")
			f.logger.Printf("[enrichment] pool lookup %s: %v", mint, err)
		} else if pool != nil {
			return pool, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.pollInterval):
		}
	}
}

func (f *Fetcher) poolInfo(ctx context.Context, mint string) (*PoolMatch, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire provider slot: %w", err)
	}
	defer f.sem.Release(1)
	return f.pools.PoolInfo(ctx, mint)
}

// fetchAttributes is a single best-effort attempt; failure yields an
// empty result.
func (f *Fetcher) fetchAttributes(ctx context.Context, mint string) *TokenAttributes {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return &TokenAttributes{}
	}
	defer f.sem.Release(1)

	attrs, err := f.metadata.GetAttributes(ctx, mint)
	if err != nil || attrs == nil {
		if err != nil {
			observability.RecordProviderError("metadata")
			f.logger.Printf("[enrichment] attributes %s: %v", mint, err)
		}
		return &TokenAttributes{}
	}
	return attrs
}

// fetchInfo is a single best-effort attempt; failure yields an empty
// result.
func (f *Fetcher) fetchInfo(ctx context.Context, mint string) *TokenInfo {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return &TokenInfo{}
	}
	defer f.sem.Release(1)

	info, err := f.metadata.GetInfo(ctx, mint)
	if err != nil || info == nil {
		if err != nil {
			observability.RecordProviderError("metadata")
			f.logger.Printf("[enrichment] info %s: %v", mint, err)
		}
		return &TokenInfo{}
	}
	return info
}
