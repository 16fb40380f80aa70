package pqpool

import (
	"context"
	"sync"

	"github.com/nbpq/nbpq/conn"
	"github.com/nbpq/nbpq/pqquery"
	"github.com/nbpq/nbpq/pqresult"
)

// ConnectionHandle is spec.md §3's shared handle: it wraps an acquired
// Connection with a drop action that recycles the connection if it is still
// ready, or destroys it and notifies the pool otherwise. Release is
// idempotent and safe to call from any goroutine.
//
// Go's tracing garbage collector reclaims reference cycles on its own, so
// unlike the C++ original's weak_ptr-back-to-pool trick (needed there only
// to avoid leaking the pool via a retain cycle), this handle simply holds a
// direct *Pool: there is no cycle to break, and the pool's own Close already
// makes Release on an outstanding handle safe to call after pool teardown.
type ConnectionHandle struct {
	conn *conn.Connection
	pool *Pool
	once sync.Once
}

func (p *Pool) newHandle(c *conn.Connection) *ConnectionHandle {
	return &ConnectionHandle{conn: c, pool: p}
}

// Conn exposes the underlying Connection for query/transaction operations.
func (h *ConnectionHandle) Conn() *conn.Connection {
	return h.conn
}

// Query is a convenience forward to the underlying Connection.
func (h *ConnectionHandle) Query(ctx context.Context, q pqquery.Query) ([]*pqresult.Result, error) {
	return h.conn.Query(ctx, q)
}

// QuerySQL is a convenience forward to the underlying Connection.
func (h *ConnectionHandle) QuerySQL(ctx context.Context, sql string, args ...any) ([]*pqresult.Result, error) {
	return h.conn.QuerySQL(ctx, sql, args...)
}

// Transaction is a convenience forward to the underlying Connection.
func (h *ConnectionHandle) Transaction(ctx context.Context, level conn.IsoLevel, body func(context.Context) (any, error)) (any, error) {
	return h.conn.Transaction(ctx, level, body)
}

// Release returns the connection to the pool if it is still ready, or
// destroys it and notifies the pool of the loss otherwise. Idempotent.
func (h *ConnectionHandle) Release() {
	h.once.Do(func() {
		if h.conn.Ready() {
			h.pool.onConnReady(h.conn)
			return
		}
		h.conn.Disconnect()
		h.pool.onConnLost()
	})
}
