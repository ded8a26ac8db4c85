package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store-wide resource gauges, refreshed periodically by Collector.
	TablesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablestore_tables_total",
			Help: "Total number of tables across all accounts",
		},
	)

	EntitiesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tablestore_entities_total",
			Help: "Total number of entities by account and table",
		},
		[]string{"account", "table"},
	)

	// Table operation metrics
	TableOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_table_operations_total",
			Help: "Total number of table registry operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	// Entity operation metrics
	EntityOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_entity_operations_total",
			Help: "Total number of entity operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	EntityOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablestore_entity_operation_duration_seconds",
			Help:    "Time taken to perform an entity operation, in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Query engine metrics
	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_query_requests_total",
			Help: "Total number of query requests by kind (tables, entities)",
		},
		[]string{"kind"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablestore_query_duration_seconds",
			Help:    "Time taken to execute a paginated query, in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	QueryResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablestore_query_results_returned",
			Help:    "Number of records returned by a single query page",
			Buckets: []float64{0, 1, 10, 50, 100, 250, 500, 1000},
		},
		[]string{"kind"},
	)

	// Batch transaction metrics
	BatchTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_batch_transactions_total",
			Help: "Total number of batch transactions by outcome",
		},
		[]string{"outcome"},
	)

	BatchTransactionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablestore_batch_transaction_duration_seconds",
			Help:    "Time a batch transaction was open, from begin to end, in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Service properties metrics
	ServicePropertiesOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_service_properties_operations_total",
			Help: "Total number of service-properties get/set operations",
		},
		[]string{"op"},
	)

	// Storage snapshot metrics
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablestore_snapshot_duration_seconds",
			Help:    "Time taken to write a BoltDB hot-backup snapshot, in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_snapshots_total",
			Help: "Total number of snapshot attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(TablesTotal)
	prometheus.MustRegister(EntitiesTotal)
	prometheus.MustRegister(TableOperationsTotal)
	prometheus.MustRegister(EntityOperationsTotal)
	prometheus.MustRegister(EntityOperationDuration)
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryResultsReturned)
	prometheus.MustRegister(BatchTransactionsTotal)
	prometheus.MustRegister(BatchTransactionDuration)
	prometheus.MustRegister(ServicePropertiesOperationsTotal)
	prometheus.MustRegister(SnapshotDuration)
	prometheus.MustRegister(SnapshotsTotal)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer running from now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
