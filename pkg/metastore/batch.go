package metastore

import (
	"time"

	"github.com/cuemby/tablestore/pkg/events"
	"github.com/cuemby/tablestore/pkg/log"
	"github.com/cuemby/tablestore/pkg/metrics"
)

// BeginBatchTransaction opens the single in-flight batch this store
// permits. Both undo logs must be empty; a nonempty log (an earlier
// batch that has recorded a write and not yet ended) fails with
// ErrTransactionOverlap. An earlier batch that has not recorded any
// write does not block a new one. batchID is informational (kept as the
// active batch id and used in logging) rather than used to key the
// logs, since only one batch can be open regardless of its id.
func (s *Store) BeginBatchTransaction(batchID string) error {
	const op = "BeginBatchTransaction"
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rollbackPreImages) > 0 || len(s.insertedDuringBatch) > 0 {
		return newError(op, ErrTransactionOverlap)
	}
	s.activeBatchID = batchID
	s.activeBatchStarted = time.Now()
	log.WithBatch(batchID).Debug().Msg("batch transaction started")
	return nil
}

// EndBatchTransaction closes the active batch. On succeeded=true both
// undo logs are simply discarded. On succeeded=false, every pre-image
// in rollbackPreImages is restored (the current record, if any, is
// removed and the pre-image reinserted) and every entity recorded in
// insertedDuringBatch is removed. Both logs are cleared unconditionally
// once rollback finishes, so a rollback failure still leaves the store
// without a dangling in-flight batch.
func (s *Store) EndBatchTransaction(batchID string, succeeded bool) error {
	const op = "EndBatchTransaction"
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.activeBatchStarted
	defer func() {
		s.rollbackPreImages = nil
		s.insertedDuringBatch = nil
		s.activeBatchID = ""
		s.activeBatchStarted = time.Time{}
	}()

	if !started.IsZero() {
		metrics.BatchTransactionDuration.Observe(time.Since(started).Seconds())
	}

	if succeeded {
		metrics.BatchTransactionsTotal.WithLabelValues("committed").Inc()
		log.WithBatch(batchID).Debug().Msg("batch transaction committed")
		s.publishEvent(&events.Event{
			Type:     events.EventBatchCommitted,
			Message:  "batch transaction committed",
			Metadata: map[string]string{"batch_id": batchID},
		})
		return nil
	}
	defer metrics.BatchTransactionsTotal.WithLabelValues("rolled_back").Inc()

	for _, pre := range s.rollbackPreImages {
		ec := s.entityCollection(pre.account, pre.table)
		key := entityKey(pre.entity.PartitionKey, pre.entity.RowKey)
		if err := ec.Remove(key); err != nil {
			return wrapError(op, ErrInternal, err)
		}
		if err := ec.Insert(key, pre.entity.Clone()); err != nil {
			return wrapError(op, ErrInternal, err)
		}
	}
	for _, ins := range s.insertedDuringBatch {
		ec := s.entityCollection(ins.account, ins.table)
		if err := ec.Remove(entityKey(ins.entity.PartitionKey, ins.entity.RowKey)); err != nil {
			return wrapError(op, ErrInternal, err)
		}
	}

	log.WithBatch(batchID).Debug().Msg("batch transaction rolled back")
	s.publishEvent(&events.Event{
		Type:     events.EventBatchRolledBack,
		Message:  "batch transaction rolled back",
		Metadata: map[string]string{"batch_id": batchID},
	})
	return nil
}
