package pqpool_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbpq/nbpq/pqpool"
)

func testConnString(t *testing.T) string {
	t.Helper()
	cs := os.Getenv("NBPQ_TEST_CONN_STRING")
	if cs == "" {
		t.Skipf("Skipping due to missing environment variable %v", "NBPQ_TEST_CONN_STRING")
	}
	return cs
}

// S4: the pool never exceeds its configured maximum live connection count.
func TestGetRespectsMax(t *testing.T) {
	cs := testConnString(t)
	p := pqpool.New(cs, pqpool.WithMin(1), pqpool.WithMax(2))
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h1, err := p.Get(ctx)
	require.NoError(t, err)
	h2, err := p.Get(ctx)
	require.NoError(t, err)

	assert.LessOrEqual(t, p.Stat().Live, 2)

	acquired := make(chan struct{})
	go func() {
		h3, err := p.Get(ctx)
		require.NoError(t, err)
		close(acquired)
		h3.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("third acquisition should block while the pool is at max")
	case <-time.After(200 * time.Millisecond):
	}

	h1.Release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was never served after a handle was released")
	}

	h2.Release()
}

// Released handles are recycled back into the idle set rather than
// destroyed, as long as the underlying connection is still ready.
func TestReleaseRecyclesReadyConnections(t *testing.T) {
	cs := testConnString(t)
	p := pqpool.New(cs, pqpool.WithMin(1), pqpool.WithMax(3))
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := p.Get(ctx)
	require.NoError(t, err)
	id := h.Conn().ID
	h.Release()

	h2, err := p.Get(ctx)
	require.NoError(t, err)
	defer h2.Release()
	assert.Equal(t, id, h2.Conn().ID)
}

// Release is idempotent: calling it twice must not panic or double-release.
func TestReleaseIsIdempotent(t *testing.T) {
	cs := testConnString(t)
	p := pqpool.New(cs, pqpool.WithMin(1), pqpool.WithMax(3))
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := p.Get(ctx)
	require.NoError(t, err)
	h.Release()
	h.Release()
}

func TestQuerySQLThroughHandle(t *testing.T) {
	cs := testConnString(t)
	p := pqpool.New(cs, pqpool.WithMin(1), pqpool.WithMax(3))
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := p.Get(ctx)
	require.NoError(t, err)
	defer h.Release()

	results, err := h.QuerySQL(ctx, "select 1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	defer results[0].Close()
	assert.Equal(t, "1", string(results[0].Get(0, 0).Data()))
}
