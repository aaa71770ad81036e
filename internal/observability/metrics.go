// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Discovery metrics
	LogEventsReceived    prometheus.Counter
	FailedTxSkipped      prometheus.Counter
	PoolsDetected        prometheus.Counter
	TokensDiscovered     prometheus.Counter
	PoolsIgnored         *prometheus.CounterVec
	DiscoveryErrors      *prometheus.CounterVec
	MintKeyTypes         *prometheus.CounterVec
	WSReconnects         prometheus.Counter

	// Staging metrics
	StagingQueueSize prometheus.Gauge
	TokensReleased   prometheus.Counter

	// Enrichment metrics
	EnrichmentAttempts  prometheus.Counter
	EnrichmentCompleted prometheus.Counter
	EnrichmentAbandoned prometheus.Counter
	ProviderErrors      *prometheus.CounterVec
	ProviderLatency     *prometheus.HistogramVec

	// Filter metrics
	FilterEvaluations prometheus.Counter
	FilterPassed      prometheus.Counter
	FilterRejected    *prometheus.CounterVec

	// Notification metrics
	AlertsSent         prometheus.Counter
	AlertErrors        *prometheus.CounterVec
	CommandsProcessed  *prometheus.CounterVec

	// Latency metrics
	RPCCallLatency   *prometheus.HistogramVec
	WSMessageLatency prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastAlertSent prometheus.Gauge
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "raydium_sniper"
	}

	return &Metrics{
		// Discovery metrics
		LogEventsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "log_events_received_total",
			Help:      "Total number of log notifications received from the WebSocket subscription",
		}),
		FailedTxSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "failed_tx_skipped_total",
			Help:      "Total number of failed transactions skipped before classification",
		}),
		PoolsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pools_detected_total",
			Help:      "Total number of pool initializations detected",
		}),
		TokensDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "tokens_discovered_total",
			Help:      "Total number of new tokens staged for evaluation",
		}),
		PoolsIgnored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pools_ignored_total",
			Help:      "Total number of pools ignored by reason",
		}, []string{"reason"}),
		DiscoveryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "errors_total",
			Help:      "Total number of discovery errors by type",
		}, []string{"error_type"}),
		MintKeyTypes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "mint_key_types_total",
			Help:      "Total number of staged mints by key type (on-curve keypair vs program-derived)",
		}, []string{"type"}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),

		// Staging metrics
		StagingQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "staging",
			Name:      "queue_size",
			Help:      "Current number of tokens waiting out the grace period",
		}),
		TokensReleased: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staging",
			Name:      "tokens_released_total",
			Help:      "Total number of tokens released to enrichment after the grace period",
		}),

		// Enrichment metrics
		EnrichmentAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "attempts_total",
			Help:      "Total number of enrichment fetch attempts",
		}),
		EnrichmentCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "completed_total",
			Help:      "Total number of tokens successfully enriched",
		}),
		EnrichmentAbandoned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "abandoned_total",
			Help:      "Total number of enrichments abandoned by cancellation",
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "provider_errors_total",
			Help:      "Total number of provider request errors by provider",
		}, []string{"provider"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "provider_latency_seconds",
			Help:      "Provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		// Filter metrics
		FilterEvaluations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "evaluations_total",
			Help:      "Total number of filter evaluations",
		}),
		FilterPassed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "passed_total",
			Help:      "Total number of tokens that passed all filter checks",
		}),
		FilterRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "rejected_total",
			Help:      "Total number of tokens rejected by failing check",
		}, []string{"check"}),

		// Notification metrics
		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "alerts_sent_total",
			Help:      "Total number of alerts broadcast",
		}),
		AlertErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "alert_errors_total",
			Help:      "Total number of alert delivery errors by destination",
		}, []string{"destination"}),
		CommandsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "commands_processed_total",
			Help:      "Total number of bot commands processed by command",
		}, []string{"command"}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		WSMessageLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_message_latency_seconds",
			Help:      "WebSocket message processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastAlertSent: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_alert_sent_timestamp",
			Help:      "Unix timestamp of the last alert broadcast",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTokenDiscovered increments the tokens discovered counter.
func RecordTokenDiscovered() {
	DefaultMetrics.TokensDiscovered.Inc()
}

// RecordPoolIgnored records an ignored pool by reason.
func RecordPoolIgnored(reason string) {
	DefaultMetrics.PoolsIgnored.WithLabelValues(reason).Inc()
}

// RecordMintKeyType records whether a staged mint is a program-derived
// address or an on-curve keypair.
func RecordMintKeyType(programDerived bool) {
	keyType := "on_curve"
	if programDerived {
		keyType = "program_derived"
	}
	DefaultMetrics.MintKeyTypes.WithLabelValues(keyType).Inc()
}

// RecordDiscoveryError records a discovery error by type.
func RecordDiscoveryError(errorType string) {
	DefaultMetrics.DiscoveryErrors.WithLabelValues(errorType).Inc()
}

// RecordProviderError records a provider request error.
func RecordProviderError(provider string) {
	DefaultMetrics.ProviderErrors.WithLabelValues(provider).Inc()
}

// RecordFilterRejection records a rejection by the failing check name.
func RecordFilterRejection(check string) {
	DefaultMetrics.FilterRejected.WithLabelValues(check).Inc()
}

// RecordAlertSent updates alert counters and the health gauge.
func RecordAlertSent(unixSeconds float64) {
	DefaultMetrics.AlertsSent.Inc()
	DefaultMetrics.LastAlertSent.Set(unixSeconds)
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
