package clickhouse

import (
	"context"
	"fmt"
	"time"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/storage"
)

// AlertArchive implements storage.AlertArchive using ClickHouse.
// Append-only: one row per delivered alert, keyed by deterministic alert_id.
type AlertArchive struct {
	conn *Conn
}

// NewAlertArchive creates a new AlertArchive.
func NewAlertArchive(conn *Conn) *AlertArchive {
	return &AlertArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.AlertArchive = (*AlertArchive)(nil)

// Insert records a delivered alert.
func (s *AlertArchive) Insert(ctx context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (
			alert_id, mint, symbol,
			price_usd, market_cap_usd, liquidity_usd,
			lp_locked_pct, lp_token_pct, dev_holding_pct,
			social_count, discovered_at, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		a.AlertID, a.Mint, a.Symbol,
		a.PriceUSD, a.MarketCapUSD, a.LiquidityUSD,
		a.LPLockedPct, a.LPTokenPct, a.DevHoldingPct,
		int32(a.SocialCount),
		time.UnixMilli(a.DiscoveredAt).UTC(),
		time.UnixMilli(a.SentAt).UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetByMint retrieves archived alerts for a mint, ordered by sent_at ASC.
func (s *AlertArchive) GetByMint(ctx context.Context, mint string) ([]*domain.Alert, error) {
	query := `
		SELECT alert_id, mint, symbol,
			price_usd, market_cap_usd, liquidity_usd,
			lp_locked_pct, lp_token_pct, dev_holding_pct,
			social_count, discovered_at, sent_at
		FROM alerts
		WHERE mint = ?
		ORDER BY sent_at ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query alerts by mint: %w", err)
	}
	defer rows.Close()

	var result []*domain.Alert
	for rows.Next() {
		a := &domain.Alert{}
		var socialCount int32
		var discoveredAt, sentAt time.Time
		if err := rows.Scan(
			&a.AlertID, &a.Mint, &a.Symbol,
			&a.PriceUSD, &a.MarketCapUSD, &a.LiquidityUSD,
			&a.LPLockedPct, &a.LPTokenPct, &a.DevHoldingPct,
			&socialCount, &discoveredAt, &sentAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.SocialCount = int(socialCount)
		a.DiscoveredAt = discoveredAt.UnixMilli()
		a.SentAt = sentAt.UnixMilli()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}

	return result, nil
}
