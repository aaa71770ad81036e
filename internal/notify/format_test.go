package notify

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/filter"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.994, "999.99"},
		{1_000, "1.00K"},
		{52_340.5, "52.34K"},
		{1_000_000, "1.00M"},
		{98_765_432, "98.77M"},
		{1_234_567_890, "1.23B"},
		{4.2e12, "4.20T"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "input %v", tt.in)
	}
}

func TestFormatValue_RoundTrip(t *testing.T) {
	// Within 2-decimal rounding the suffixed form recovers the input.
	for _, v := range []float64{1_500, 2_340_000, 7_890_000_000, 1.23e12} {
		s := FormatValue(v)
		suffix := s[len(s)-1]
		num, err := strconv.ParseFloat(s[:len(s)-1], 64)
		assert.NoError(t, err)

		mult := map[byte]float64{'K': 1e3, 'M': 1e6, 'B': 1e9, 'T': 1e12}[suffix]
		recovered := num * mult
		assert.InEpsilon(t, v, recovered, 0.005, "value %v via %s", v, s)
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.UnixMilli(1_717_000_000_000)

	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{90 * time.Second, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{90 * time.Minute, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
	}

	for _, tt := range tests {
		ts := now.Add(-tt.age).UnixMilli()
		assert.Equal(t, tt.want, RelativeAge(ts, now))
	}
}

func TestFormatAlert(t *testing.T) {
	now := time.UnixMilli(1_717_000_300_000) // 5 minutes after discovery

	record := &domain.TokenRecord{
		Name:          "Sample Token",
		Symbol:        "SMPL",
		MintAddress:   "TokenMint111",
		Decimals:      9,
		TotalSupply:   1e18, // raw units; 1B display
		PriceUSD:      0.00012345,
		LiquidityUSD:  52_340.5,
		LPLockedPct:   97.3,
		DevHoldingPct: 3.7,
		Socials: domain.SocialLinks{
			Websites: []string{"https://smpl.example", "https://docs.smpl.example"},
			Telegram: "smpl_chat",
			Twitter:  "smpl",
		},
		DiscoveredAt: 1_717_000_000_000,
	}
	derived := filter.Derived{
		MarketCapUSD: 98_000,
		LPTokenCount: 423_979.75,
		LPTokenPct:   20.0,
		SocialCount:  3,
	}

	text := FormatAlert(record, derived, now)

	assert.Contains(t, text, "Discovered: 5 minutes ago")
	assert.Contains(t, text, "Name: Sample Token (SMPL)")
	assert.Contains(t, text, "Contract: TokenMint111")
	assert.Contains(t, text, "💰 Price: $0.00012345")
	assert.Contains(t, text, "📊 Market Cap: $98.00K")
	assert.Contains(t, text, "🪙 Total Supply: 1.00B")
	assert.Contains(t, text, "💧 Liquidity: $52.34K (97.30% locked)")
	assert.Contains(t, text, "🔒 LP Tokens: 423.98K (20.00% of supply)")
	assert.Contains(t, text, "👤 Dev Holdings: 3.70%")
	assert.Contains(t, text, "🌐 Socials (3/4):")
	// Every website gets its own line, handles render as links.
	assert.Contains(t, text, "✅ Website: https://smpl.example")
	assert.Contains(t, text, "✅ Website: https://docs.smpl.example")
	assert.Contains(t, text, "❌ Discord")
	assert.Contains(t, text, "✅ Telegram: https://t.me/smpl_chat")
	assert.Contains(t, text, "✅ Twitter: https://x.com/smpl")
}

func TestFormatAlert_MissingMetadata(t *testing.T) {
	record := &domain.TokenRecord{
		MintAddress:  "TokenMint111",
		DiscoveredAt: time.Now().UnixMilli(),
	}

	text := FormatAlert(record, filter.Derived{}, time.Now())

	assert.Contains(t, text, "Name: Unknown (?)")
	assert.True(t, strings.Contains(text, "🌐 Socials (0/4):"))
	assert.Contains(t, text, "❌ Website")
	assert.Contains(t, text, "❌ Telegram")
}
