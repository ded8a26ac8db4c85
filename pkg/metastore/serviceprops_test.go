package metastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/tablestore/pkg/types"
)

func TestGetServiceProperties_DefaultsWhenUnset(t *testing.T) {
	st := openTestStore(t)

	props, err := st.GetServiceProperties("acct")
	require.NoError(t, err)
	assert.Equal(t, "acct", props.AccountName)
	assert.Nil(t, props.Cors)
	assert.Nil(t, props.Logging)
}

func TestSetServiceProperties_InsertThenPartialMerge(t *testing.T) {
	st := openTestStore(t)

	logging := &types.LoggingConfig{Version: "1.0", Read: true}
	err := st.SetServiceProperties(&types.ServiceProperties{AccountName: "acct", Logging: logging})
	require.NoError(t, err)

	got, err := st.GetServiceProperties("acct")
	require.NoError(t, err)
	require.NotNil(t, got.Logging)
	assert.True(t, got.Logging.Read)
	assert.Nil(t, got.HourMetrics)

	hourMetrics := &types.MetricsConfig{Version: "1.0", Enabled: true}
	err = st.SetServiceProperties(&types.ServiceProperties{AccountName: "acct", HourMetrics: hourMetrics})
	require.NoError(t, err)

	got2, err := st.GetServiceProperties("acct")
	require.NoError(t, err)
	require.NotNil(t, got2.Logging, "unset fields in a later SetServiceProperties must not clobber prior values")
	assert.True(t, got2.Logging.Read)
	require.NotNil(t, got2.HourMetrics)
	assert.True(t, got2.HourMetrics.Enabled)
}

func TestGetServiceProperties_SeedsFromConfiguredDefault(t *testing.T) {
	template := &types.ServiceProperties{
		Cors: []*types.CorsRule{{AllowedOrigins: []string{"*"}}},
	}
	st, err := Open(t.TempDir(), Options{DefaultServiceProperties: template})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	props, err := st.GetServiceProperties("acct")
	require.NoError(t, err)
	assert.Equal(t, "acct", props.AccountName, "seeded record still gets the requested account's name")
	require.Len(t, props.Cors, 1)
	assert.Equal(t, []string{"*"}, props.Cors[0].AllowedOrigins)
}

func TestTableACLPolicy_NotImplemented(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetTableACLPolicy("acct", "Widgets")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrNotImplemented, kind)

	err = st.SetTableACLPolicy("acct", "Widgets", nil)
	require.Error(t, err)
	kind, _ = KindOf(err)
	assert.Equal(t, ErrNotImplemented, kind)
}
