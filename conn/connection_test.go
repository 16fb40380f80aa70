package conn_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbpq/nbpq/conn"
	"github.com/nbpq/nbpq/pqlog/testingadapter"
)

// testConnString mirrors the teacher's PGX_TEST_DATABASE convention: tests
// that need a live Postgres are skipped unless the environment names one.
func testConnString(t *testing.T) string {
	t.Helper()
	cs := os.Getenv("NBPQ_TEST_CONN_STRING")
	if cs == "" {
		t.Skipf("Skipping due to missing environment variable %v", "NBPQ_TEST_CONN_STRING")
	}
	return cs
}

// S1: select a scalar.
func TestConnectAndQueryScalar(t *testing.T) {
	cs := testConnString(t)
	c := conn.New(cs, testingadapter.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()
	assert.True(t, c.Ready())

	results, err := c.QuerySQL(ctx, "select 1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	defer res.Close()

	assert.True(t, res.IsSucceed())
	assert.Equal(t, 1, res.RowCount())
	assert.Equal(t, "1", string(res.Get(0, 0).Data()))
}

// S2: parameterized query.
func TestQueryWithParams(t *testing.T) {
	cs := testConnString(t)
	c := conn.New(cs, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()

	results, err := c.QuerySQL(ctx, "select $1::text", "hello")
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	defer res.Close()
	assert.Equal(t, "hello", string(res.Get(0, 0).Data()))
}

// S3: a failing query disconnects the Connection rather than leaving it in a
// half-open state.
func TestFailingQueryDisconnects(t *testing.T) {
	cs := testConnString(t)
	c := conn.New(cs, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()

	_, err := c.QuerySQL(ctx, "select * from nonexistent_table_xyz")
	require.Error(t, err)
	assert.False(t, c.Ready())
}

// S5/S6: commit and rollback via the Transaction combinator.
func TestTransactionCommit(t *testing.T) {
	cs := testConnString(t)
	c := conn.New(cs, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()

	_, err := c.Transaction(ctx, conn.Serializable, func(ctx context.Context) (any, error) {
		return c.QuerySQL(ctx, "select 1")
	})
	require.NoError(t, err)
	assert.True(t, c.Ready())
}

func TestTransactionRollbackOnBodyError(t *testing.T) {
	cs := testConnString(t)
	c := conn.New(cs, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()

	sentinel := assert.AnError
	_, err := c.Transaction(ctx, conn.Serializable, func(ctx context.Context) (any, error) {
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.True(t, c.Ready())
}
