package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for HTTP requests
var (
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Prometheus metrics for transfer-engine business operations
var (
	AccountsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total number of accounts created",
		},
	)

	TransferOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_outcomes_total",
			Help: "Total number of transfer attempts by terminal outcome",
		},
		[]string{"outcome"}, // outcome: succeeded, rejected, system_failure
	)

	TransferRejectionReasonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_rejection_reasons_total",
			Help: "Total number of rejected transfers by reason code",
		},
		[]string{"reason"},
	)

	IdempotentReplaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotent_replays_total",
			Help: "Total number of requests served as idempotent replays",
		},
		[]string{"source"}, // source: cache, database
	)

	CompensatingWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compensating_writes_total",
			Help: "Total number of compensating writes attempted after a system fault",
		},
		[]string{"result"}, // result: recorded, unrecordable
	)

	TransferAmountHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transfer_amount_minor_units",
			Help:    "Distribution of transfer amounts in minor currency units",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
	)

	AccountBalancesHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "account_balances_minor_units",
			Help:    "Distribution of account balances in minor currency units",
			Buckets: []float64{0, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		},
	)

	ActiveAccountsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_active_total",
			Help: "Current number of active (non-terminated) accounts in the system",
		},
	)
)

// Event-publishing reliability metrics, exercised by the async Kafka producer.
var (
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of events dropped before publishing",
		},
		[]string{"reason"},
	)

	EventPublishingErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publishing_errors_total",
			Help: "Total number of event publishing errors reported by the broker",
		},
		[]string{"reason"},
	)

	CircuitBreakerStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_publisher_circuit_breaker_state",
			Help: "Current circuit breaker state for the event publisher (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// System metrics
var (
	GoroutinesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "go_goroutines_current",
			Help: "Current number of goroutines",
		},
	)

	MemoryUsageGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "go_memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
		[]string{"type"}, // heap, stack, sys
	)
)

// RecordAccountCreation records a new account creation.
func RecordAccountCreation() {
	AccountsCreatedTotal.Inc()
}

// RecordTransferOutcome records a terminal transfer outcome.
func RecordTransferOutcome(outcome string) {
	TransferOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordTransferRejection records a rejection reason code.
func RecordTransferRejection(reason string) {
	TransferRejectionReasonsTotal.WithLabelValues(reason).Inc()
}

// RecordIdempotentReplay records a replayed response, tagged by the layer that served it.
func RecordIdempotentReplay(source string) {
	IdempotentReplaysTotal.WithLabelValues(source).Inc()
}

// RecordCompensatingWrite records whether a post-fault compensating write succeeded.
func RecordCompensatingWrite(result string) {
	CompensatingWritesTotal.WithLabelValues(result).Inc()
}

// RecordTransferAmount records the amount of a settled transfer for distribution analysis.
func RecordTransferAmount(amount float64) {
	TransferAmountHistogram.Observe(amount)
}

// RecordAccountBalance records an account balance for distribution analysis.
func RecordAccountBalance(balance float64) {
	AccountBalancesHistogram.Observe(balance)
}

// UpdateActiveAccounts updates the count of active accounts.
func UpdateActiveAccounts(count float64) {
	ActiveAccountsGauge.Set(count)
}

// RecordEventDropped records an event dropped before it reached the broker.
func RecordEventDropped(reason string) {
	EventsDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordEventPublishingError records a publishing error reported by the broker.
func RecordEventPublishingError(reason string) {
	EventPublishingErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordCircuitBreakerState records the current breaker state (0 closed, 1 half-open, 2 open).
func RecordCircuitBreakerState(name string, state float64) {
	CircuitBreakerStateGauge.WithLabelValues(name).Set(state)
}

// UpdateSystemMetrics refreshes goroutine and memory gauges. Called by the
// /metrics HTTP handler on each request.
func UpdateSystemMetrics() {
	GoroutinesGauge.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsageGauge.WithLabelValues("heap").Set(float64(m.HeapInuse))
	MemoryUsageGauge.WithLabelValues("stack").Set(float64(m.StackInuse))
	MemoryUsageGauge.WithLabelValues("sys").Set(float64(m.Sys))
}
