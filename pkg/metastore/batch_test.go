package metastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/tablestore/pkg/types"
)

func TestBatchTransaction_OverlapRejected(t *testing.T) {
	st := openTestStore(t)
	mustCreateTable(t, st, "acct", "Widgets")

	require.NoError(t, st.BeginBatchTransaction("batch-1"))
	_, err := st.InsertTableEntity("acct", "Widgets", &types.Entity{PartitionKey: "p1", RowKey: "r1"}, time.Now(), "batch-1")
	require.NoError(t, err)
	err = st.BeginBatchTransaction("batch-2")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrTransactionOverlap, kind)

	require.NoError(t, st.EndBatchTransaction("batch-1", true))
	require.NoError(t, st.BeginBatchTransaction("batch-2"))
	require.NoError(t, st.EndBatchTransaction("batch-2", true))
}

func TestBatchTransaction_RollbackRestoresPreImageAndRemovesInsert(t *testing.T) {
	st := openTestStore(t)
	mustCreateTable(t, st, "acct", "Widgets")

	existing := &types.Entity{PartitionKey: "p1", RowKey: "r1", Properties: map[string]any{"Color": "red"}}
	inserted, err := st.InsertTableEntity("acct", "Widgets", existing, time.Now(), "")
	require.NoError(t, err)

	require.NoError(t, st.BeginBatchTransaction("batch-1"))

	_, err = st.UpdateTableEntity("acct", "Widgets", &types.Entity{PartitionKey: "p1", RowKey: "r1", Properties: map[string]any{"Color": "blue"}}, inserted.ETag, time.Now(), "batch-1")
	require.NoError(t, err)

	_, err = st.InsertTableEntity("acct", "Widgets", &types.Entity{PartitionKey: "p2", RowKey: "r2"}, time.Now(), "batch-1")
	require.NoError(t, err)

	require.NoError(t, st.EndBatchTransaction("batch-1", false))

	restored, found, err := st.QueryTableEntitiesWithPartitionAndRowKey("acct", "Widgets", "p1", "r1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "red", restored.Properties["Color"])
	assert.Equal(t, inserted.ETag, restored.ETag)

	_, found, err = st.QueryTableEntitiesWithPartitionAndRowKey("acct", "Widgets", "p2", "r2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBatchTransaction_CommitKeepsChanges(t *testing.T) {
	st := openTestStore(t)
	mustCreateTable(t, st, "acct", "Widgets")

	inserted, err := st.InsertTableEntity("acct", "Widgets", &types.Entity{PartitionKey: "p1", RowKey: "r1"}, time.Now(), "")
	require.NoError(t, err)

	require.NoError(t, st.BeginBatchTransaction("batch-1"))
	err = st.DeleteTableEntity("acct", "Widgets", "p1", "r1", inserted.ETag, "batch-1")
	require.NoError(t, err)
	require.NoError(t, st.EndBatchTransaction("batch-1", true))

	_, found, err := st.QueryTableEntitiesWithPartitionAndRowKey("acct", "Widgets", "p1", "r1")
	require.NoError(t, err)
	assert.False(t, found)
}
