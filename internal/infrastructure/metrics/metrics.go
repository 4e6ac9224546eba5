package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Unit of work metrics
	UoWAttempts       prometheus.Counter
	UoWConflicts      prometheus.Counter
	UoWExhausted      prometheus.Counter
	UoWCommitDuration prometheus.Histogram
	UoWCommitAttempts prometheus.Histogram

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferAmount   prometheus.Histogram
	TransferErrors   *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter

	// Outbox metrics
	EventsPublished prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UoWAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "optiledger_uow_attempts_total",
			Help: "Total unit of work attempts started",
		}),
		UoWConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "optiledger_uow_conflicts_total",
			Help: "Total optimistic concurrency conflicts",
		}),
		UoWExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "optiledger_uow_retries_exhausted_total",
			Help: "Total units of work abandoned after the last attempt conflicted",
		}),
		UoWCommitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "optiledger_uow_commit_duration_seconds",
			Help:    "Duration of committed units of work including retries",
			Buckets: prometheus.DefBuckets,
		}),
		UoWCommitAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "optiledger_uow_commit_attempts",
			Help:    "Attempts needed per committed unit of work",
			Buckets: []float64{1, 2, 3, 5, 10},
		}),

		// Transfer metrics
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "optiledger_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "optiledger_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optiledger_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "optiledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "optiledger_outbox_events_published_total",
			Help: "Total outbox events published",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optiledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "optiledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// AttemptStarted implements uow.Recorder.
func (m *Metrics) AttemptStarted() { m.UoWAttempts.Inc() }

// Conflict implements uow.Recorder.
func (m *Metrics) Conflict() { m.UoWConflicts.Inc() }

// Exhausted implements uow.Recorder.
func (m *Metrics) Exhausted() { m.UoWExhausted.Inc() }

// Committed implements uow.Recorder.
func (m *Metrics) Committed(attempts int, duration time.Duration) {
	m.UoWCommitAttempts.Observe(float64(attempts))
	m.UoWCommitDuration.Observe(duration.Seconds())
}
