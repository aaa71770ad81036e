package domain

// DiscoveredToken is the quote-side mint of a newly created pool.
// Produced by the listener, staged until the grace period elapses.
type DiscoveredToken struct {
	Address      string // token mint address (base58)
	DiscoveredAt int64  // Unix timestamp in milliseconds
}

// StagedToken is a staging store entry awaiting enrichment.
// The ID is assigned by the store; duplicate discoveries of the same
// mint are distinct entries.
type StagedToken struct {
	ID           int64
	Address      string
	DiscoveredAt int64 // Unix timestamp in milliseconds
}

// TokenRecord is the canonical enriched token, merged from the pool
// liquidity provider and the metadata provider. It exists only after
// the pool provider returned a non-empty match for the mint.
type TokenRecord struct {
	// Identity
	Name        string
	Symbol      string
	MintAddress string
	Decimals    int
	ImageURL    string

	// Market
	TotalSupply     float64 // raw supply, not decimals-adjusted
	PriceUSD        float64
	FDVUSD          float64
	MarketCapUSD    float64
	TotalReserveUSD float64

	// Liquidity
	LiquidityUSD float64 // pool TVL in USD
	LPLockedPct  float64 // burned/locked LP percentage

	// Distribution
	Top10HolderPct float64 // LP tokens held by top holders
	DevHoldingPct  float64

	Socials SocialLinks

	DiscoveredAt int64 // Unix timestamp in milliseconds
	LastUpdated  int64 // Unix timestamp in milliseconds, fetch time when source omits it
}
