// Package notify formats alerts and broadcasts them to the configured
// destinations.
package notify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/filter"
)

// FormatValue renders a large number with a K/M/B/T suffix and two
// decimals; values under a thousand keep plain two-decimal form.
func FormatValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// RelativeAge renders how long ago a unix-millisecond timestamp was.
func RelativeAge(tsMillis int64, now time.Time) string {
	age := now.Sub(time.UnixMilli(tsMillis))
	switch {
	case age < time.Minute:
		return "just now"
	case age < 2*time.Minute:
		return "1 minute ago"
	case age < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(age.Minutes()))
	case age < 2*time.Hour:
		return "1 hour ago"
	default:
		return fmt.Sprintf("%d hours ago", int(age.Hours()))
	}
}

// socialLine renders one ✅/❌ social channel line.
func socialLine(label, value string) string {
	if value == "" {
		return fmt.Sprintf("❌ %s", label)
	}
	return fmt.Sprintf("✅ %s: %s", label, value)
}

// telegramURL and twitterURL turn provider handles into links; the
// provider returns bare handles, not URLs.
func telegramURL(handle string) string {
	if handle == "" {
		return ""
	}
	return "https://t.me/" + handle
}

func twitterURL(handle string) string {
	if handle == "" {
		return ""
	}
	return "https://x.com/" + handle
}

// FormatAlert renders the full alert text for an accepted token.
// derived carries the values the filter actually evaluated so the
// message matches the decision exactly.
func FormatAlert(record *domain.TokenRecord, derived filter.Derived, now time.Time) string {
	var b strings.Builder

	name := record.Name
	if name == "" {
		name = "Unknown"
	}
	symbol := record.Symbol
	if symbol == "" {
		symbol = "?"
	}

	displaySupply := record.TotalSupply
	if record.Decimals > 0 {
		displaySupply = record.TotalSupply / math.Pow10(record.Decimals)
	}

	fmt.Fprintf(&b, "🚨 New Token Alert 🚨\n")
	fmt.Fprintf(&b, "Discovered: %s\n\n", RelativeAge(record.DiscoveredAt, now))
	fmt.Fprintf(&b, "Name: %s (%s)\n", name, symbol)
	fmt.Fprintf(&b, "Contract: %s\n\n", record.MintAddress)
	fmt.Fprintf(&b, "💰 Price: $%.8f\n", record.PriceUSD)
	fmt.Fprintf(&b, "📊 Market Cap: $%s\n", FormatValue(derived.MarketCapUSD))
	fmt.Fprintf(&b, "🪙 Total Supply: %s\n", FormatValue(displaySupply))
	fmt.Fprintf(&b, "💧 Liquidity: $%s (%.2f%% locked)\n", FormatValue(record.LiquidityUSD), record.LPLockedPct)
	fmt.Fprintf(&b, "🔒 LP Tokens: %s (%.2f%% of supply)\n", FormatValue(derived.LPTokenCount), derived.LPTokenPct)
	fmt.Fprintf(&b, "👤 Dev Holdings: %.2f%%\n\n", record.DevHoldingPct)
	fmt.Fprintf(&b, "🌐 Socials (%d/%d):\n", record.Socials.AvailableCount(), record.Socials.Total())
	if len(record.Socials.Websites) == 0 {
		fmt.Fprintf(&b, "%s\n", socialLine("Website", ""))
	}
	for _, site := range record.Socials.Websites {
		fmt.Fprintf(&b, "%s\n", socialLine("Website", site))
	}
	fmt.Fprintf(&b, "%s\n", socialLine("Discord", record.Socials.Discord))
	fmt.Fprintf(&b, "%s\n", socialLine("Telegram", telegramURL(record.Socials.Telegram)))
	fmt.Fprintf(&b, "%s", socialLine("Twitter", twitterURL(record.Socials.Twitter)))

	return b.String()
}
