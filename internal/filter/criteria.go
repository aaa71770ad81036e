// Package filter evaluates enriched tokens against mutable thresholds.
package filter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Threshold keys accepted by Set, in display order.
const (
	KeySocialAccountsMin  = "social_accounts_min"
	KeyLockedLiquidityMin = "locked_liquidity_min"
	KeyLockedLiquidityMax = "locked_liquidity_max"
	KeyLPTokensMin        = "lp_tokens_min"
	KeyDevHoldMin         = "dev_hold_min"
	KeyDevHoldMax         = "dev_hold_max"
)

// ErrUnknownKey is returned by Set for an unrecognized threshold key.
var ErrUnknownKey = errors.New("unknown filter key")

// Keys lists the threshold keys in display order.
func Keys() []string {
	return []string{
		KeySocialAccountsMin,
		KeyLockedLiquidityMin,
		KeyLockedLiquidityMax,
		KeyLPTokensMin,
		KeyDevHoldMin,
		KeyDevHoldMax,
	}
}

// Snapshot is an immutable copy of the thresholds. The Modified flags
// track whether a value was explicitly set and exist only for
// presentation.
type Snapshot struct {
	SocialAccountsMin          int
	SocialAccountsMinModified  bool
	LockedLiquidityMin         float64
	LockedLiquidityMinModified bool
	LockedLiquidityMax         float64
	LockedLiquidityMaxModified bool
	LPTokensMin                float64
	LPTokensMinModified        bool
	DevHoldMin                 float64
	DevHoldMinModified         bool
	DevHoldMax                 float64
	DevHoldMaxModified         bool
}

// Criteria holds the six thresholds behind a mutex. Reads take a
// Snapshot so an evaluation never observes a half-applied update.
type Criteria struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewCriteria returns criteria with the default thresholds.
func NewCriteria() *Criteria {
	return &Criteria{
		snap: Snapshot{
			SocialAccountsMin:  1,
			LockedLiquidityMin: 1,
			LockedLiquidityMax: 100,
			LPTokensMin:        10.0,
			DevHoldMin:         1.0,
			DevHoldMax:         5.0,
		},
	}
}

// Snapshot returns a copy of the current thresholds.
func (c *Criteria) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Set validates and applies one threshold. social_accounts_min accepts
// whole numbers only; every other key accepts a finite non-negative
// number.
// On bad input the state is unchanged and the returned error message is
// suitable for showing to the user.
func (c *Criteria) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	if key == KeySocialAccountsMin {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a whole number, got %q", key, value)
		}
		if n < 0 {
			return fmt.Errorf("%s must not be negative, got %d", key, n)
		}
		c.mu.Lock()
		c.snap.SocialAccountsMin = n
		c.snap.SocialAccountsMinModified = true
		c.mu.Unlock()
		return nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s must be a number, got %q", key, value)
	}
	// ParseFloat admits "NaN" and "Inf"; neither is a usable threshold
	// and NaN slips past the sign check below.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number, got %q", key, value)
	}
	if v < 0 {
		return fmt.Errorf("%s must not be negative, got %v", key, v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case KeyLockedLiquidityMin:
		c.snap.LockedLiquidityMin = v
		c.snap.LockedLiquidityMinModified = true
	case KeyLockedLiquidityMax:
		c.snap.LockedLiquidityMax = v
		c.snap.LockedLiquidityMaxModified = true
	case KeyLPTokensMin:
		c.snap.LPTokensMin = v
		c.snap.LPTokensMinModified = true
	case KeyDevHoldMin:
		c.snap.DevHoldMin = v
		c.snap.DevHoldMinModified = true
	case KeyDevHoldMax:
		c.snap.DevHoldMax = v
		c.snap.DevHoldMaxModified = true
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Get returns the display value and modified flag for a key.
func (s Snapshot) Get(key string) (value string, modified bool, ok bool) {
	switch key {
	case KeySocialAccountsMin:
		return strconv.Itoa(s.SocialAccountsMin), s.SocialAccountsMinModified, true
	case KeyLockedLiquidityMin:
		return formatThreshold(s.LockedLiquidityMin), s.LockedLiquidityMinModified, true
	case KeyLockedLiquidityMax:
		return formatThreshold(s.LockedLiquidityMax), s.LockedLiquidityMaxModified, true
	case KeyLPTokensMin:
		return formatThreshold(s.LPTokensMin), s.LPTokensMinModified, true
	case KeyDevHoldMin:
		return formatThreshold(s.DevHoldMin), s.DevHoldMinModified, true
	case KeyDevHoldMax:
		return formatThreshold(s.DevHoldMax), s.DevHoldMaxModified, true
	default:
		return "", false, false
	}
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
