// Package scheduler releases staged tokens once they have waited out
// the grace period and hands them to the evaluation handler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"raydium-sniper/internal/domain"
	"raydium-sniper/internal/observability"
	"raydium-sniper/internal/storage"
)

// Default timing parameters.
const (
	DefaultGracePeriod  = time.Minute
	DefaultPollInterval = 10 * time.Second
)

// Handler processes a released token. It runs on its own goroutine and
// owns all retries; the scheduler never re-dispatches a token.
type Handler func(ctx context.Context, token *domain.StagedToken)

// Config holds scheduler parameters.
type Config struct {
	// GracePeriod is the minimum age before a staged token is released.
	GracePeriod time.Duration
	// PollInterval is how often the staging store is checked.
	PollInterval time.Duration
	// Logger receives release diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Scheduler polls the staging store and dispatches due tokens.
type Scheduler struct {
	staging storage.StagingStore
	handler Handler
	config  Config
	logger  *log.Logger

	wg sync.WaitGroup
}

// New creates a scheduler.
func New(staging storage.StagingStore, handler Handler, config Config) *Scheduler {
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultGracePeriod
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		staging: staging,
		handler: handler,
		config:  config,
		logger:  logger,
	}
}

// Run polls until the context is cancelled, then waits for in-flight
// handlers to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			if err := s.releaseDue(ctx); err != nil {
				s.logger.Printf("[scheduler] release: %v", err)
			}
		}
	}
}

// releaseDue dispatches every staged token older than the grace period.
// Each token is removed from the store before its handler starts, so a
// token is dispatched at most once.
func (s *Scheduler) releaseDue(ctx context.Context) error {
	due, err := s.staging.DequeueOlderThan(ctx, s.config.GracePeriod)
	if err != nil {
		return fmt.Errorf("dequeue staged tokens: %w", err)
	}

	for _, token := range due {
		if err := s.staging.Remove(ctx, token.ID); err != nil {
			// Another release already claimed it.
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return fmt.Errorf("remove staged token %d: %w", token.ID, err)
		}

		observability.DefaultMetrics.TokensReleased.Inc()
		observability.DefaultMetrics.StagingQueueSize.Dec()
		s.logger.Printf("[scheduler] releasing %s after %s", token.Address, s.config.GracePeriod)

		s.wg.Add(1)
		go func(t *domain.StagedToken) {
			defer s.wg.Done()
			s.handler(ctx, t)
		}(token)
	}

	return nil
}
