package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raydium-sniper/internal/domain"
)

// passingRecord builds a record that clears every default threshold.
func passingRecord() *domain.TokenRecord {
	return &domain.TokenRecord{
		Name:         "Sample Token",
		Symbol:       "SMPL",
		MintAddress:  "TokenMint111",
		TotalSupply:  1_000_000,
		PriceUSD:     0.01,
		MarketCapUSD: 10_000,
		LiquidityUSD: 2_000, // 200k LP tokens = 20% of supply
		LPLockedPct:  95,
		DevHoldingPct: 2.5,
		Socials: domain.SocialLinks{
			Telegram: "smpl_chat",
			Twitter:  "smpl",
		},
	}
}

func TestEvaluate_AcceptsPassingRecord(t *testing.T) {
	result := Evaluate(passingRecord(), NewCriteria().Snapshot())

	assert.True(t, result.Accepted)
	assert.Empty(t, result.FirstFailure())
	require.Len(t, result.Checks, 4)
	for _, c := range result.Checks {
		assert.True(t, c.Pass, "check %s", c.Name)
	}

	assert.Equal(t, 10_000.0, result.Derived.MarketCapUSD)
	assert.Equal(t, 200_000.0, result.Derived.LPTokenCount)
	assert.Equal(t, 20.0, result.Derived.LPTokenPct)
	assert.Equal(t, 2, result.Derived.SocialCount)
}

func TestEvaluate_SocialMinimumIsStrict(t *testing.T) {
	// Exactly one social with a minimum of one: 1 > 1 is false.
	record := passingRecord()
	record.Socials = domain.SocialLinks{Telegram: "smpl_chat"}

	result := Evaluate(record, NewCriteria().Snapshot())

	assert.False(t, result.Accepted)
	assert.Equal(t, "social_accounts", result.FirstFailure())
}

func TestEvaluate_ZeroPriceRejects(t *testing.T) {
	record := passingRecord()
	record.PriceUSD = 0

	result := Evaluate(record, NewCriteria().Snapshot())

	assert.False(t, result.Accepted)
	assert.Equal(t, "lp_tokens", result.FirstFailure())
	assert.Zero(t, result.Derived.LPTokenPct)
}

func TestEvaluate_ZeroSupplyRejects(t *testing.T) {
	record := passingRecord()
	record.TotalSupply = 0

	result := Evaluate(record, NewCriteria().Snapshot())

	assert.False(t, result.Accepted)
	assert.Equal(t, "lp_tokens", result.FirstFailure())
}

func TestEvaluate_LockedLiquidityBounds(t *testing.T) {
	tests := []struct {
		name   string
		locked float64
		pass   bool
	}{
		{"below min", 0.5, false},
		{"at min", 1, true},
		{"inside", 50, true},
		{"at max", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := passingRecord()
			record.LPLockedPct = tt.locked

			result := Evaluate(record, NewCriteria().Snapshot())
			assert.Equal(t, tt.pass, result.Accepted)
		})
	}
}

func TestEvaluate_DevHoldBounds(t *testing.T) {
	tests := []struct {
		name string
		dev  float64
		pass bool
	}{
		{"below min", 0.5, false},
		{"at min", 1.0, true},
		{"at max", 5.0, true},
		{"above max", 5.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := passingRecord()
			record.DevHoldingPct = tt.dev

			result := Evaluate(record, NewCriteria().Snapshot())
			assert.Equal(t, tt.pass, result.Accepted)
		})
	}
}

func TestEvaluate_AllChecksReportedOnFailure(t *testing.T) {
	record := passingRecord()
	record.Socials = domain.SocialLinks{} // first axis fails
	record.DevHoldingPct = 50             // last axis also fails

	result := Evaluate(record, NewCriteria().Snapshot())

	assert.False(t, result.Accepted)
	require.Len(t, result.Checks, 4)
	assert.False(t, result.Checks[0].Pass)
	assert.True(t, result.Checks[1].Pass)
	assert.True(t, result.Checks[2].Pass)
	assert.False(t, result.Checks[3].Pass)
}

func TestEvaluate_MarketCapFallsBackToFDV(t *testing.T) {
	record := passingRecord()
	record.MarketCapUSD = 0
	record.FDVUSD = 7_500

	result := Evaluate(record, NewCriteria().Snapshot())
	assert.Equal(t, 7_500.0, result.Derived.MarketCapUSD)
}

func TestEvaluate_Purity(t *testing.T) {
	record := passingRecord()
	snap := NewCriteria().Snapshot()

	first := Evaluate(record, snap)
	second := Evaluate(record, snap)

	assert.Equal(t, first, second)
	// The input record is untouched.
	assert.Equal(t, passingRecord(), record)
}

func TestEvaluate_LPTokensMonotonicity(t *testing.T) {
	// Raising liquidity never flips the lp_tokens check from pass to fail.
	snap := NewCriteria().Snapshot()
	prevPass := false

	for _, liquidity := range []float64{0, 500, 1_000, 5_000, 50_000} {
		record := passingRecord()
		record.LiquidityUSD = liquidity

		result := Evaluate(record, snap)
		pass := result.Checks[2].Pass
		if prevPass {
			assert.True(t, pass, "liquidity %v regressed", liquidity)
		}
		prevPass = pass
	}
}

func TestCriteria_SetValidation(t *testing.T) {
	c := NewCriteria()

	// Integer-only threshold rejects fractions and garbage.
	require.Error(t, c.Set("social_accounts_min", "1.5"))
	require.Error(t, c.Set("social_accounts_min", "many"))
	require.Error(t, c.Set("social_accounts_min", "-1"))
	require.NoError(t, c.Set("social_accounts_min", "2"))

	require.Error(t, c.Set("dev_hold_max", "abc"))
	require.Error(t, c.Set("dev_hold_max", "-3"))
	require.NoError(t, c.Set("dev_hold_max", "7.5"))

	// ParseFloat admits these spellings; a threshold must be finite.
	require.Error(t, c.Set("lp_tokens_min", "NaN"))
	require.Error(t, c.Set("lp_tokens_min", "+Inf"))
	require.Error(t, c.Set("locked_liquidity_max", "-Inf"))

	err := c.Set("unknown_key", "1")
	require.ErrorIs(t, err, ErrUnknownKey)

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.SocialAccountsMin)
	assert.True(t, snap.SocialAccountsMinModified)
	assert.Equal(t, 7.5, snap.DevHoldMax)
	assert.True(t, snap.DevHoldMaxModified)
	// Untouched thresholds keep defaults and stay unmodified.
	assert.Equal(t, 10.0, snap.LPTokensMin)
	assert.False(t, snap.LPTokensMinModified)
}

func TestCriteria_BadInputLeavesStateUnchanged(t *testing.T) {
	c := NewCriteria()
	before := c.Snapshot()

	require.Error(t, c.Set("lp_tokens_min", "not-a-number"))
	require.Error(t, c.Set("lp_tokens_min", "NaN"))
	require.Error(t, c.Set("social_accounts_min", "one"))

	assert.Equal(t, before, c.Snapshot())
}

func TestSnapshot_Get(t *testing.T) {
	c := NewCriteria()
	require.NoError(t, c.Set("locked_liquidity_min", "5"))
	snap := c.Snapshot()

	value, modified, ok := snap.Get("locked_liquidity_min")
	require.True(t, ok)
	assert.Equal(t, "5", value)
	assert.True(t, modified)

	value, modified, ok = snap.Get("dev_hold_min")
	require.True(t, ok)
	assert.Equal(t, "1", value)
	assert.False(t, modified)

	_, _, ok = snap.Get("nope")
	assert.False(t, ok)
}
