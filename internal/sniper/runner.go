// Package sniper wires the pipeline: listener → staging → scheduler →
// enrichment → filter → notifier, plus the optional alert archive and
// command bot.
package sniper

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"raydium-sniper/internal/discovery"
	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/enrichment"
	"raydium-sniper/internal/filter"
	"raydium-sniper/internal/idhash"
	"raydium-sniper/internal/notify"
	"raydium-sniper/internal/observability"
	"raydium-sniper/internal/scheduler"
	"raydium-sniper/internal/solana"
	"raydium-sniper/internal/storage"
)

// Options for creating a Runner.
type Options struct {
	// Required components.
	WS       solana.WSClient
	RPC      solana.RPCClient
	Staging  storage.StagingStore
	Fetcher  *enrichment.Fetcher
	Criteria *filter.Criteria
	Notifier *notify.Notifier

	// Optional components.
	Archive storage.AlertArchive // append-only alert history
	Bot     interface {          // command surface
		Run(ctx context.Context) error
	}

	// Pipeline parameters.
	ProgramID    string
	Commitment   string
	GracePeriod  time.Duration
	PollInterval time.Duration

	Logger *log.Logger
}

// Runner owns the pipeline goroutines.
type Runner struct {
	listener  *discovery.Listener
	scheduler *scheduler.Scheduler
	opts      Options
	logger    *log.Logger
}

// New creates a runner from fully constructed components.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := &Runner{
		opts:   opts,
		logger: logger,
	}

	r.listener = discovery.NewListener(opts.WS, opts.RPC, opts.Staging, discovery.ListenerConfig{
		ProgramID:  opts.ProgramID,
		Commitment: opts.Commitment,
		Logger:     logger,
	})

	r.scheduler = scheduler.New(opts.Staging, r.handleToken, scheduler.Config{
		GracePeriod:  opts.GracePeriod,
		PollInterval: opts.PollInterval,
		Logger:       logger,
	})

	return r
}

// Run starts the listener, scheduler and bot, and blocks until the
// context is cancelled or a component fails to start. In-flight token
// handlers finish before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := r.listener.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	})

	g.Go(func() error {
		return r.scheduler.Run(ctx)
	})

	if r.opts.Bot != nil {
		g.Go(func() error {
			return r.opts.Bot.Run(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleToken takes a released token through enrichment, the filter and
// the notifier. It runs on a scheduler goroutine per token.
func (r *Runner) handleToken(ctx context.Context, token *domain.StagedToken) {
	record, err := r.opts.Fetcher.Fetch(ctx, token)
	if err != nil {
		r.logger.Printf("[sniper] enrichment %s abandoned: %v", token.Address, err)
		return
	}

	observability.DefaultMetrics.FilterEvaluations.Inc()

	result := filter.Evaluate(record, r.opts.Criteria.Snapshot())
	if !result.Accepted {
		observability.RecordFilterRejection(result.FirstFailure())
		r.logger.Printf("[sniper] %s rejected by %s", token.Address, result.FirstFailure())
		return
	}

	observability.DefaultMetrics.FilterPassed.Inc()

	sentAt := time.Now()
	alertText := notify.FormatAlert(record, result.Derived, sentAt)
	r.opts.Notifier.Broadcast(ctx, alertText)

	if r.opts.Archive != nil {
		alert := &domain.Alert{
			AlertID:       idhash.ComputeAlertID(record.MintAddress, record.DiscoveredAt, sentAt.UnixMilli()),
			Mint:          record.MintAddress,
			Symbol:        record.Symbol,
			PriceUSD:      record.PriceUSD,
			MarketCapUSD:  result.Derived.MarketCapUSD,
			LiquidityUSD:  record.LiquidityUSD,
			LPLockedPct:   record.LPLockedPct,
			LPTokenPct:    result.Derived.LPTokenPct,
			DevHoldingPct: record.DevHoldingPct,
			SocialCount:   result.Derived.SocialCount,
			DiscoveredAt:  record.DiscoveredAt,
			SentAt:        sentAt.UnixMilli(),
		}
		if err := r.opts.Archive.Insert(ctx, alert); err != nil {
			// Archiving is best effort; the alert is already out.
			r.logger.Printf("[sniper] archive %s: %v", alert.AlertID, err)
		}
	}
}
