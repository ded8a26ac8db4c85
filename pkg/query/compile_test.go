package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/tablestore/pkg/types"
)

func entityWith(pk, rk string, props map[string]any) *types.Entity {
	return &types.Entity{PartitionKey: pk, RowKey: rk, Properties: props}
}

func TestCompileEntityFilter_StringEquality(t *testing.T) {
	pred, err := CompileEntityFilter("RowKey eq 'b'")
	require.NoError(t, err)

	assert.True(t, pred(entityWith("p", "b", nil)))
	assert.False(t, pred(entityWith("p", "a", nil)))
	assert.False(t, pred(entityWith("p", "c", nil)))
}

func TestCompileEntityFilter_StringRange(t *testing.T) {
	pred, err := CompileEntityFilter("RowKey ge 'b' and RowKey lt 'c'")
	require.NoError(t, err)

	assert.True(t, pred(entityWith("p", "b", nil)))
	assert.False(t, pred(entityWith("p", "a", nil)))
	assert.False(t, pred(entityWith("p", "c", nil)))
}

func TestCompileEntityFilter_Datetime(t *testing.T) {
	pred, err := CompileEntityFilter("When gt datetime'2024-01-01T00:00:00Z'")
	require.NoError(t, err)

	match := entityWith("p", "r", map[string]any{"When": "2024-01-02T03:04:05Z"})
	noMatch := entityWith("p", "r", map[string]any{"When": "2023-01-01T00:00:00Z"})

	assert.True(t, pred(match))
	assert.False(t, pred(noMatch))

	predLt, err := CompileEntityFilter("When lt datetime'2024-01-01T00:00:00Z'")
	require.NoError(t, err)
	assert.False(t, predLt(match))
}

func TestCompileEntityFilter_LongIntStoredAsString(t *testing.T) {
	pred, err := CompileEntityFilter("Count eq 42L")
	require.NoError(t, err)

	assert.True(t, pred(entityWith("p", "r", map[string]any{"Count": "42"})))
	assert.False(t, pred(entityWith("p", "r", map[string]any{"Count": "43"})))
}

func TestCompileEntityFilter_QuoteEscaping(t *testing.T) {
	pred, err := CompileEntityFilter("RowKey eq 'it''s'")
	require.NoError(t, err)

	assert.True(t, pred(entityWith("p", "it's", nil)))
}

func TestCompileEntityFilter_Guid(t *testing.T) {
	pred, err := CompileEntityFilter("RowKey eq guid'550e8400-e29b-41d4-a716-446655440000'")
	require.NoError(t, err)

	assert.True(t, pred(entityWith("p", "550e8400-e29b-41d4-a716-446655440000", nil)))
}

func TestCompileEntityFilter_ParensAndNot(t *testing.T) {
	pred, err := CompileEntityFilter("not (RowKey eq 'a') and PartitionKey eq 'p'")
	require.NoError(t, err)

	assert.True(t, pred(entityWith("p", "b", nil)))
	assert.False(t, pred(entityWith("p", "a", nil)))
	assert.False(t, pred(entityWith("q", "b", nil)))
}

func TestCompileEntityFilter_BinaryLiteralRejected(t *testing.T) {
	_, err := CompileEntityFilter("RowKey eq binary'ff00'")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCondition))

	_, err = CompileEntityFilter("RowKey eq X'ff00'")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCondition))
}

func TestCompileEntityFilter_Empty(t *testing.T) {
	pred, err := CompileEntityFilter("")
	require.NoError(t, err)
	assert.True(t, pred(entityWith("p", "r", nil)))
}

func TestCompileTableFilter(t *testing.T) {
	pred, err := CompileTableFilter("TableName eq 'foo'")
	require.NoError(t, err)

	assert.True(t, pred("foo"))
	assert.False(t, pred("bar"))
}

func TestCompileTableFilter_PropertyReferenceRejected(t *testing.T) {
	_, err := CompileTableFilter("SomeProperty eq 'x'")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCondition))
}
