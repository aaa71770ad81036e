// Package discovery watches the Raydium program for new liquidity pools
// and stages the launched token for downstream evaluation.
package discovery

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"raydium-sniper/internal/observability"
	"raydium-sniper/internal/solana"
	"raydium-sniper/internal/storage"
)

// initLogMarker appears in the program logs of a Raydium V4 pool
// initialization transaction.
const initLogMarker = "initialize2"

// Raydium initialize2 instruction account layout: positions 8 and 9
// hold the two pool mints.
const (
	coinMintIndex = 8
	pcMintIndex   = 9
)

// ListenerConfig configures the pool listener.
type ListenerConfig struct {
	// ProgramID is the program whose logs are watched. Defaults to
	// the Raydium liquidity pool V4 program.
	ProgramID string
	// Commitment is the subscription commitment level. Defaults to
	// "finalized" so only irreversible pool creations are staged.
	Commitment string
	// Logger receives per-event diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Listener consumes log notifications, resolves the originating
// transaction and stages newly launched tokens.
type Listener struct {
	ws      solana.WSClient
	rpc     solana.RPCClient
	staging storage.StagingStore
	config  ListenerConfig
	logger  *log.Logger

	// seenSigs guards against re-delivery of the same transaction
	// after a reconnect resubscribe.
	seenSigs   map[string]bool
	seenSigsMu sync.Mutex
}

// NewListener creates a pool listener.
func NewListener(ws solana.WSClient, rpc solana.RPCClient, staging storage.StagingStore, config ListenerConfig) *Listener {
	if config.ProgramID == "" {
		config.ProgramID = RaydiumAMMV4
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{
		ws:       ws,
		rpc:      rpc,
		staging:  staging,
		config:   config,
		logger:   logger,
		seenSigs: make(map[string]bool),
	}
}

// Run subscribes to program logs and processes notifications until the
// context is cancelled or the notification channel closes. Individual
// event failures are logged and never stop the loop.
func (l *Listener) Run(ctx context.Context) error {
	ch, err := l.ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions:   []string{l.config.ProgramID},
		Commitment: l.config.Commitment,
	})
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}

	l.logger.Printf("[discovery] watching program %s", l.config.ProgramID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return nil
			}
			observability.DefaultMetrics.LogEventsReceived.Inc()
			if err := l.handleNotification(ctx, notif); err != nil {
				observability.RecordDiscoveryError("handle_notification")
				l.logger.Printf("[discovery] %s: %v", notif.Signature, err)
			}
		}
	}
}

// handleNotification processes a single log notification.
func (l *Listener) handleNotification(ctx context.Context, notif solana.LogNotification) error {
	if notif.Err != nil {
		observability.DefaultMetrics.FailedTxSkipped.Inc()
		return nil
	}

	if !hasInitMarker(notif.Logs) {
		return nil
	}

	if l.alreadySeen(notif.Signature) {
		return nil
	}

	tx, err := l.rpc.GetTransaction(ctx, notif.Signature)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if tx == nil {
		return fmt.Errorf("transaction not found")
	}

	mintA, mintB, err := l.extractPoolMints(tx)
	if err != nil {
		return err
	}

	observability.DefaultMetrics.PoolsDetected.Inc()

	token, ok := ClassifyPair(mintA, mintB)
	if !ok {
		if IsBaseToken(mintA) && IsBaseToken(mintB) {
			observability.RecordPoolIgnored("base_base")
		} else {
			observability.RecordPoolIgnored("no_base")
		}
		l.logger.Printf("[discovery] ignoring pool %s / %s", mintA, mintB)
		return nil
	}

	if err := ValidateAddress(token); err != nil {
		observability.RecordPoolIgnored("invalid_mint")
		return fmt.Errorf("pool token: %w", err)
	}

	discoveredAt := time.Now().UnixMilli()
	if tx.BlockTime > 0 {
		discoveredAt = tx.BlockTime * 1000
	}

	if err := l.staging.Enqueue(ctx, token, discoveredAt); err != nil {
		return fmt.Errorf("stage token %s: %w", token, err)
	}

	pda := IsProgramDerived(token)
	observability.RecordTokenDiscovered()
	observability.RecordMintKeyType(pda)
	observability.DefaultMetrics.StagingQueueSize.Inc()
	l.logger.Printf("[discovery] staged %s (slot=%d pda=%v)", token, tx.Slot, pda)
	return nil
}

// extractPoolMints locates the pool initialization instruction and
// returns the two pool mints.
func (l *Listener) extractPoolMints(tx *solana.Transaction) (string, string, error) {
	if tx.Message == nil {
		return "", "", fmt.Errorf("transaction has no parsed message")
	}
	for _, inst := range tx.Message.Instructions {
		if inst.ProgramID != l.config.ProgramID {
			continue
		}
		if len(inst.Accounts) <= pcMintIndex {
			continue
		}
		return inst.Accounts[coinMintIndex], inst.Accounts[pcMintIndex], nil
	}
	return "", "", fmt.Errorf("no pool instruction for program %s", l.config.ProgramID)
}

func (l *Listener) alreadySeen(signature string) bool {
	l.seenSigsMu.Lock()
	defer l.seenSigsMu.Unlock()
	if l.seenSigs[signature] {
		return true
	}
	l.seenSigs[signature] = true
	return false
}

func hasInitMarker(logs []string) bool {
	for _, line := range logs {
		if strings.Contains(line, initLogMarker) {
			return true
		}
	}
	return false
}
