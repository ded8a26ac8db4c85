/*
Package metrics provides Prometheus metrics collection and exposition for
the table store.

Metrics fall into two groups, updated two different ways:

  - Resource gauges (TablesTotal, EntitiesTotal) are snapshotted
    periodically by a Collector polling a metastore.Store's CollectStats
    method — cheap because it reads bbolt bucket key counts rather than
    unmarshaling every record.
  - Operation counters and histograms (table/entity/query/batch/service-
    properties duration and outcome) are updated directly at their call
    sites in pkg/metastore. Query durations use the package-level Timer
    helper; entity and batch durations are measured from a start time
    taken at the call site.

All metrics are registered at package init against the global Prometheus
registry and exposed by Handler() for a "/metrics" HTTP route.

# Usage

	timer := metrics.NewTimer()
	// ... perform an operation ...
	timer.ObserveDurationVec(metrics.EntityOperationDuration, "insert")

	collector := metrics.NewCollector(metastoreStore)
	collector.Start()
	defer collector.Stop()

	http.Handle("/metrics", metrics.Handler())
*/
package metrics
