package domain

// Alert is an archived record of a delivered notification.
// Corresponds to the alerts table in ClickHouse.
type Alert struct {
	AlertID       string // PRIMARY KEY, deterministic hash
	Mint          string
	Symbol        string
	PriceUSD      float64
	MarketCapUSD  float64
	LiquidityUSD  float64
	LPLockedPct   float64
	LPTokenPct    float64
	DevHoldingPct float64
	SocialCount   int
	DiscoveredAt  int64 // Unix timestamp in milliseconds
	SentAt        int64 // Unix timestamp in milliseconds
}
