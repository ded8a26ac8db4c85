package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetricsAreRegistered exercises every package-level metric once, to
// catch a duplicate-registration panic (two metrics sharing a name) at
// test time rather than at process startup.
func TestMetricsAreRegistered(t *testing.T) {
	TablesTotal.Set(1)
	EntitiesTotal.WithLabelValues("acct", "table").Set(1)
	TableOperationsTotal.WithLabelValues("create", "success").Inc()
	EntityOperationsTotal.WithLabelValues("insert", "success").Inc()
	EntityOperationDuration.WithLabelValues("insert").Observe(0.01)
	QueryRequestsTotal.WithLabelValues("entities").Inc()
	QueryDuration.WithLabelValues("entities").Observe(0.01)
	QueryResultsReturned.WithLabelValues("entities").Observe(10)
	BatchTransactionsTotal.WithLabelValues("committed").Inc()
	BatchTransactionDuration.Observe(0.01)
	ServicePropertiesOperationsTotal.WithLabelValues("set").Inc()
	SnapshotDuration.Observe(0.01)
	SnapshotsTotal.WithLabelValues("success").Inc()
}

// TestHandler verifies the /metrics handler serves Prometheus' text
// exposition format and includes a metric this package registers.
func TestHandler(t *testing.T) {
	TablesTotal.Set(42)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Handler() status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "tablestore_tables_total") {
		t.Error("Handler() response missing tablestore_tables_total")
	}
}
