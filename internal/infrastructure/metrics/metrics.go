package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the settlement core.
type Metrics struct {
	// Pipeline metrics
	TransfersSubmitted   prometheus.Counter
	TransfersSettled     prometheus.Counter
	TransfersBlocked     prometheus.Counter
	TransfersRejected    prometheus.Counter
	DuplicateSubmissions prometheus.Counter
	SettlementDuration   prometheus.Histogram
	SettlementErrors     *prometheus.CounterVec

	// Screening metrics
	ScreeningDecisions *prometheus.CounterVec
	ScreeningBestScore prometheus.Histogram
	WatchlistSize      prometheus.Gauge
	IndexRebuilds      prometheus.Counter

	// Lock metrics
	LockWaitDuration prometheus.Histogram
	LockTimeouts     prometheus.Counter

	// Audit chain metrics
	AuditRecordsWritten *prometheus.CounterVec
	AuditWriteFailures  prometheus.Counter
	ChainVerifications  *prometheus.CounterVec
	IntegrityBreaches   prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		TransfersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_transfers_submitted_total",
			Help: "Total number of transfer submissions accepted for processing",
		}),
		TransfersSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_transfers_settled_total",
			Help: "Total number of transfers settled to the ledger",
		}),
		TransfersBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_transfers_blocked_total",
			Help: "Total number of transfers blocked by sanctions screening",
		}),
		TransfersRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_transfers_rejected_total",
			Help: "Total number of transfers rejected on manual review",
		}),
		DuplicateSubmissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_duplicate_submissions_total",
			Help: "Total number of submissions collapsed by the idempotency guard",
		}),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlecore_settlement_duration_seconds",
			Help:    "Duration of ledger settlement operations",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlecore_settlement_errors_total",
				Help: "Total settlement errors by stable error code",
			},
			[]string{"code"},
		),

		ScreeningDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlecore_screening_decisions_total",
				Help: "Total screening decisions by outcome",
			},
			[]string{"decision"},
		),
		ScreeningBestScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlecore_screening_best_score",
			Help:    "Best similarity score observed per screening",
			Buckets: []float64{0, 50, 70, 80, 85, 90, 95, 100},
		}),
		WatchlistSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "settlecore_watchlist_size",
			Help: "Number of distinct normalized names in the sanctions index",
		}),
		IndexRebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_index_rebuilds_total",
			Help: "Total sanctions index rebuilds",
		}),

		LockWaitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlecore_lock_wait_duration_seconds",
			Help:    "Time spent waiting for account locks",
			Buckets: []float64{.0001, .001, .01, .05, .1, .5, 1, 5},
		}),
		LockTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_lock_timeouts_total",
			Help: "Total account lock acquisition timeouts",
		}),

		AuditRecordsWritten: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlecore_audit_records_total",
				Help: "Total audit chain records written by action",
			},
			[]string{"action"},
		),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_audit_write_failures_total",
			Help: "Total failed audit chain writes; any increase is a compliance incident",
		}),
		ChainVerifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlecore_chain_verifications_total",
				Help: "Total audit chain verifications by result",
			},
			[]string{"result"},
		),
		IntegrityBreaches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlecore_integrity_breaches_total",
			Help: "Total audit chain integrity breaches detected",
		}),
	}
}
