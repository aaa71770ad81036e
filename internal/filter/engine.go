package filter

import (
	"fmt"

	"raydium-sniper/internal/domain"
)

// CheckResult is the outcome of a single filter axis.
type CheckResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Derived holds values computed during evaluation. The notifier reuses
// them so an alert shows exactly what was evaluated.
type Derived struct {
	MarketCapUSD float64
	LPTokenCount float64
	LPTokenPct   float64
	SocialCount  int
}

// Result is a full evaluation: every axis is checked and reported even
// when an earlier one already failed.
type Result struct {
	Accepted bool
	Checks   []CheckResult
	Derived  Derived
}

// FirstFailure returns the name of the first failing check, or "".
func (r *Result) FirstFailure() string {
	for _, c := range r.Checks {
		if !c.Pass {
			return c.Name
		}
	}
	return ""
}

// Evaluate applies the thresholds to a token record. Pure: no state, no
// I/O; identical inputs give identical results.
func Evaluate(record *domain.TokenRecord, s Snapshot) *Result {
	checks := make([]CheckResult, 0, 4)

	// 1. Social presence: strictly more channels than the minimum.
	socialCount := record.Socials.AvailableCount()
	checks = append(checks, CheckResult{
		Name:      "social_accounts",
		Threshold: fmt.Sprintf("> %d", s.SocialAccountsMin),
		Actual:    fmt.Sprintf("%d", socialCount),
		Pass:      socialCount > s.SocialAccountsMin,
	})

	// 2. Locked liquidity within bounds.
	checks = append(checks, CheckResult{
		Name:      "locked_liquidity",
		Threshold: fmt.Sprintf("%.2f..%.2f%%", s.LockedLiquidityMin, s.LockedLiquidityMax),
		Actual:    fmt.Sprintf("%.2f%%", record.LPLockedPct),
		Pass:      record.LPLockedPct >= s.LockedLiquidityMin && record.LPLockedPct <= s.LockedLiquidityMax,
	})

	// 3. LP token share of supply. A missing price or supply makes the
	// share incomputable and rejects outright.
	var lpTokenCount, lpTokenPct float64
	lpCheck := CheckResult{
		Name:      "lp_tokens",
		Threshold: fmt.Sprintf(">= %.2f%%", s.LPTokensMin),
	}
	switch {
	case record.PriceUSD <= 0:
		lpCheck.Actual = "price unavailable"
		lpCheck.Pass = false
	case record.TotalSupply <= 0:
		lpCheck.Actual = "supply unavailable"
		lpCheck.Pass = false
	default:
		lpTokenCount = record.LiquidityUSD / record.PriceUSD
		lpTokenPct = lpTokenCount / record.TotalSupply * 100
		lpCheck.Actual = fmt.Sprintf("%.2f%%", lpTokenPct)
		lpCheck.Pass = lpTokenPct >= s.LPTokensMin
	}
	checks = append(checks, lpCheck)

	// 4. Developer holdings within bounds.
	checks = append(checks, CheckResult{
		Name:      "dev_hold",
		Threshold: fmt.Sprintf("%.2f..%.2f%%", s.DevHoldMin, s.DevHoldMax),
		Actual:    fmt.Sprintf("%.2f%%", record.DevHoldingPct),
		Pass:      record.DevHoldingPct >= s.DevHoldMin && record.DevHoldingPct <= s.DevHoldMax,
	})

	accepted := true
	for _, c := range checks {
		if !c.Pass {
			accepted = false
			break
		}
	}

	marketCap := record.MarketCapUSD
	if marketCap == 0 {
		marketCap = record.FDVUSD
	}

	return &Result{
		Accepted: accepted,
		Checks:   checks,
		Derived: Derived{
			MarketCapUSD: marketCap,
			LPTokenCount: lpTokenCount,
			LPTokenPct:   lpTokenPct,
			SocialCount:  socialCount,
		},
	}
}
