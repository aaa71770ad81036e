package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"raydium-sniper/internal/observability"
)

// resumeMessage acknowledges that the pipeline keeps watching after an
// alert.
const resumeMessage = "✅ Alert sent. Resuming monitoring..."

// Destination receives broadcast messages.
type Destination interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Notifier fans an alert out to its destination list. Destinations are
// broadcast in registration order.
type Notifier struct {
	mu           sync.Mutex
	destinations []Destination
	logger       *log.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(destinations []Destination, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{
		destinations: destinations,
		logger:       logger,
	}
}

// AddDestination registers a destination at the end of the broadcast
// order. A destination with an already-registered name is ignored.
func (n *Notifier) AddDestination(dest Destination) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, d := range n.destinations {
		if d.Name() == dest.Name() {
			return
		}
	}
	n.destinations = append(n.destinations, dest)
	n.logger.Printf("[notify] destination %s registered", dest.Name())
}

// Broadcast delivers the alert text followed by the resume
// acknowledgment to every destination. A failing destination is logged
// and skipped; the remaining destinations still receive both messages.
func (n *Notifier) Broadcast(ctx context.Context, alertText string) {
	n.mu.Lock()
	destinations := make([]Destination, len(n.destinations))
	copy(destinations, n.destinations)
	n.mu.Unlock()

	for _, dest := range destinations {
		if err := dest.Send(ctx, alertText); err != nil {
			observability.DefaultMetrics.AlertErrors.WithLabelValues(dest.Name()).Inc()
			n.logger.Printf("[notify] %s: %v", dest.Name(), err)
			continue
		}
		if err := dest.Send(ctx, resumeMessage); err != nil {
			observability.DefaultMetrics.AlertErrors.WithLabelValues(dest.Name()).Inc()
			n.logger.Printf("[notify] %s ack: %v", dest.Name(), err)
		}
	}

	observability.RecordAlertSent(float64(time.Now().Unix()))
}
