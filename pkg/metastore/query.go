package metastore

import (
	"encoding/base64"

	"github.com/cuemby/tablestore/pkg/metrics"
	"github.com/cuemby/tablestore/pkg/query"
	"github.com/cuemby/tablestore/pkg/types"
)

// DefaultQueryResultMax is the page size used when a caller doesn't
// specify top, matching the library-wide default the pagination design
// calls out.
const DefaultQueryResultMax = 1000

// EncodeContinuationKey Base64-encodes one continuation key. Each key
// (partition key, row key, or table name) is encoded independently
// rather than as part of one composite token, since either may contain
// bytes a client can't safely carry in an HTTP header otherwise.
func EncodeContinuationKey(key string) string {
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecodeContinuationKey reverses EncodeContinuationKey.
func DecodeContinuationKey(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// QueryTables lists tables for account, ascending by table name,
// filtered by an OData $filter (empty admits all). When the matching
// set exceeds top, the result is truncated to top and the would-be
// next table name is returned as the continuation cursor (empty string
// means no more pages). nextTable, if given, resumes from the first
// table name >= nextTable.
func (s *Store) QueryTables(account, filter string, top int, nextTable string) ([]*types.Table, string, error) {
	const op = "QueryTables"
	timer := metrics.NewTimer()
	metrics.QueryRequestsTotal.WithLabelValues("tables").Inc()
	defer timer.ObserveDurationVec(metrics.QueryDuration, "tables")
	s.mu.Lock()
	defer s.mu.Unlock()

	if top <= 0 {
		top = s.queryPageSize()
	}
	predicate, err := query.CompileTableFilter(filter)
	if err != nil {
		return nil, "", wrapError(op, ErrQueryConditionInvalid, err)
	}

	prefix := accountPrefix(account)
	start := prefix
	if nextTable != "" {
		start = tableKey(account, nextTable)
	}

	rows, err := s.tables.Query().
		SeekFrom(start).
		BreakOnPrefixMismatch(prefix).
		Where(func(t *types.Table) bool { return predicate(t.Name) }).
		Limit(top + 1).
		Run()
	if err != nil {
		return nil, "", wrapError(op, ErrInternal, err)
	}

	next := ""
	if len(rows) > top {
		next = rows[top].Name
		rows = rows[:top]
	}
	out := make([]*types.Table, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	metrics.QueryResultsReturned.WithLabelValues("tables").Observe(float64(len(out)))
	return out, next, nil
}

// QueryTableEntities scans one table's entity collection, ascending by
// (PartitionKey, RowKey), filtered by an OData $filter (empty admits
// all) and, when given, a continuation position. nextPartitionKey and
// nextRowKey are Base64-encoded, as returned by a previous call, and are
// decoded first; a record then passes the continuation filter iff
// PartitionKey > nextPartitionKey, or PartitionKey == nextPartitionKey
// (or nextPartitionKey is unset) and RowKey >= nextRowKey. When the
// matching set exceeds top, the result is truncated and the next page's
// (PartitionKey, RowKey) is returned, Base64-encoded, as the
// continuation cursor.
func (s *Store) QueryTableEntities(account, table, filter string, top int, nextPartitionKey, nextRowKey string) ([]*types.Entity, string, string, error) {
	const op = "QueryTableEntities"
	timer := metrics.NewTimer()
	metrics.QueryRequestsTotal.WithLabelValues("entities").Inc()
	defer timer.ObserveDurationVec(metrics.QueryDuration, "entities")
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTableLocked(op, account, table); err != nil {
		return nil, "", "", err
	}
	if top <= 0 {
		top = s.queryPageSize()
	}
	decodedPK, err := DecodeContinuationKey(nextPartitionKey)
	if err != nil {
		return nil, "", "", wrapError(op, ErrQueryConditionInvalid, err)
	}
	decodedRK, err := DecodeContinuationKey(nextRowKey)
	if err != nil {
		return nil, "", "", wrapError(op, ErrQueryConditionInvalid, err)
	}
	nextPartitionKey, nextRowKey = decodedPK, decodedRK
	predicate, err := query.CompileEntityFilter(filter)
	if err != nil {
		return nil, "", "", wrapError(op, ErrQueryConditionInvalid, err)
	}

	ec := s.entityCollection(account, table)
	q := ec.Query().Limit(top + 1)
	if nextPartitionKey != "" || nextRowKey != "" {
		q = q.SeekFrom(entityKey(nextPartitionKey, nextRowKey)).Where(func(e *types.Entity) bool {
			if nextPartitionKey == "" {
				return e.RowKey >= nextRowKey
			}
			if e.PartitionKey != nextPartitionKey {
				return e.PartitionKey > nextPartitionKey
			}
			return e.RowKey >= nextRowKey
		})
	}
	q = q.Where(predicate)

	rows, err := q.Run()
	if err != nil {
		return nil, "", "", wrapError(op, ErrInternal, err)
	}

	var nextPK, nextRK string
	if len(rows) > top {
		last := rows[top]
		nextPK, nextRK = EncodeContinuationKey(last.PartitionKey), EncodeContinuationKey(last.RowKey)
		rows = rows[:top]
	}
	out := make([]*types.Entity, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	metrics.QueryResultsReturned.WithLabelValues("entities").Observe(float64(len(out)))
	return out, nextPK, nextRK, nil
}
