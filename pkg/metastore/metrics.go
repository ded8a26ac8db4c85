package metastore

import (
	"time"

	"github.com/cuemby/tablestore/pkg/metrics"
)

// instrumentEntityOp records a push-model duration/outcome pair for one
// entity CRUD call, timed from the start time the call site passes in.
// The returned func is meant to be deferred against the caller's named
// error return: defer instrumentEntityOp("insert", time.Now())(&err).
func instrumentEntityOp(op string, start time.Time) func(errp *error) {
	return func(errp *error) {
		metrics.EntityOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		outcome := "success"
		if errp != nil && *errp != nil {
			outcome = "failure"
		}
		metrics.EntityOperationsTotal.WithLabelValues(op, outcome).Inc()
	}
}

func instrumentTableOp(op string, errp *error) {
	outcome := "success"
	if errp != nil && *errp != nil {
		outcome = "failure"
	}
	metrics.TableOperationsTotal.WithLabelValues(op, outcome).Inc()
}

func instrumentServicePropertiesOp(op string) {
	metrics.ServicePropertiesOperationsTotal.WithLabelValues(op).Inc()
}

// instrumentSnapshot is installed as the backing storage.Store's
// snapshot hook in Open, so every autosave tick, explicit save, and
// final close-time snapshot reports its duration and outcome.
func instrumentSnapshot(d time.Duration, err error) {
	metrics.SnapshotDuration.Observe(d.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.SnapshotsTotal.WithLabelValues(outcome).Inc()
}
