// Package conn implements spec.md §4.3's Connection plus the connect and
// query drivers (§4.1, §4.2) and the transaction combinator (§4.5). It is
// the CORE of this module, grounded on the teacher's conn.go (public
// operation surface: connect/query/transaction/close) adapted to drive
// libpq's non-blocking API through internal/libpq instead of pgx's own
// wire-protocol frontend.
package conn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"

	"github.com/nbpq/nbpq/internal/idgen"
	"github.com/nbpq/nbpq/internal/iowait"
	"github.com/nbpq/nbpq/internal/libpq"
	"github.com/nbpq/nbpq/internal/strand"
	"github.com/nbpq/nbpq/pqerr"
	"github.com/nbpq/nbpq/pqlog"
	"github.com/nbpq/nbpq/pqquery"
	"github.com/nbpq/nbpq/pqresult"
	"github.com/nbpq/nbpq/pqtype"
)

// IsoLevel is spec.md §3's transaction level enum; Serializable is the
// default.
type IsoLevel string

const (
	Serializable    IsoLevel = "SERIALIZABLE"
	RepeatableRead  IsoLevel = "REPEATABLE READ"
	ReadCommitted   IsoLevel = "READ COMMITTED"
	ReadUncommitted IsoLevel = "READ UNCOMMITTED"
)

// Connection owns one libpq handle and the socket bound to its file
// descriptor. All operations on a Connection run on its own strand and are
// not safe to invoke concurrently -- a Connection is single-owner at any
// instant, per spec.md §4.3 "Concurrency".
type Connection struct {
	ID      uint64
	connStr string
	logger  pqlog.Logger

	strand *strand.Strand

	// disconnectOnce guards the strand's teardown: Disconnect is documented
	// as idempotent, and it is also invoked internally after a failed
	// Connect or a connection-ending Query error, so the strand must only
	// ever be closed once no matter how many of those paths fire.
	disconnectOnce sync.Once

	// closed is set by Disconnect before it closes the strand, so Ready and
	// Query report a torn-down Connection instead of using a closed strand.
	closed atomic.Bool

	native *libpq.Connection
	sock   *iowait.Socket

	// ServerVersion is populated on a successful Connect, for callers that
	// need to branch on what the server supports. Nil until then.
	ServerVersion *semver.Version
}

// New constructs a Connection bound to connStr. It does not connect; call
// Connect to drive the connect driver to completion.
func New(connStr string, logger pqlog.Logger) *Connection {
	if logger == nil {
		logger = pqlog.NopLogger
	}
	return &Connection{
		ID:      idgen.NextConnectionID(),
		connStr: connStr,
		logger:  logger,
		strand:  strand.New(),
	}
}

// Ready reports whether the Connection currently has a live libpq handle and
// socket, per spec.md §3's derivation `ready = handle present ∧ socket
// present ∧ PQstatus = OK`.
func (c *Connection) Ready() bool {
	if c.closed.Load() {
		return false
	}
	ready := false
	c.strand.Run(context.Background(), func() {
		ready = c.native != nil && c.sock != nil && c.native.Status() == libpq.ConnectionOK
	})
	return ready
}

// readyUnsafe must only be called from within the strand.
func (c *Connection) readyUnsafe() bool {
	return c.native != nil && c.sock != nil && c.native.Status() == libpq.ConnectionOK
}

// Connect runs the connect driver to completion on the Connection's strand.
func (c *Connection) Connect(ctx context.Context) error {
	var outErr error
	err := c.strand.Run(ctx, func() {
		c.logger.Log(ctx, pqlog.LevelDebug, "connecting", map[string]any{"id": c.ID})

		d := &connectDriver{connStr: c.connStr}
		native, sock, err := d.run(ctx)
		if err != nil {
			outErr = err
			c.logger.Log(ctx, pqlog.LevelError, "connect failed", map[string]any{"id": c.ID, "err": err.Error()})
			return
		}
		c.native = native
		c.sock = sock

		if v, verr := serverVersionOf(native); verr == nil {
			c.ServerVersion = v
			if v.LessThan(minSupportedServerVersion) {
				c.logger.Log(ctx, pqlog.LevelWarn, "server older than tested minimum", map[string]any{
					"id": c.ID, "server_version": v.String(), "minimum": minSupportedServerVersion.String(),
				})
			}
		}

		c.logger.Log(ctx, pqlog.LevelInfo, "connected", map[string]any{"id": c.ID})
	})
	if err != nil {
		return err
	}
	if outErr != nil {
		// The connect driver tears down its own half-formed libpq handle on
		// failure, but the strand goroutine this Connection started in New
		// is still running -- nothing else will ever use this Connection,
		// so stop it here rather than leaking it until an explicit
		// Disconnect that may never come.
		c.Disconnect()
	}
	return outErr
}

// Query runs the query driver against q and returns every Result libpq
// produced for it (possibly more than one, e.g. multi-statement commands).
// If any Result has an error status, Query returns the Results together with
// a QueryFailed error and disconnects the Connection.
func (c *Connection) Query(ctx context.Context, q pqquery.Query) ([]*pqresult.Result, error) {
	if c.closed.Load() {
		return nil, errors.New("conn: not connected")
	}
	var (
		results      []*pqresult.Result
		outErr       error
		disconnected bool
	)
	err := c.strand.Run(ctx, func() {
		if !c.readyUnsafe() {
			outErr = errors.New("conn: not connected")
			return
		}

		c.logger.Log(ctx, pqlog.LevelTrace, "query send", map[string]any{"id": c.ID, "sql": q.SQL})

		d := &queryDriver{native: c.native, sock: c.sock}
		res, err := d.run(ctx, q)
		if err == errCanceled {
			outErr = err
			return
		}
		if err == nil {
			for _, r := range res {
				if !r.IsSucceed() {
					err = pqerr.New(pqerr.QueryFailed, errors.New(r.ErrorMessage()))
					break
				}
			}
		}
		if err != nil {
			c.disconnectUnsafe()
			disconnected = true
			c.logger.Log(ctx, pqlog.LevelError, "query failed", map[string]any{"id": c.ID, "err": err.Error()})
			results = res
			outErr = err
			return
		}

		c.logger.Log(ctx, pqlog.LevelTrace, "query success", map[string]any{"id": c.ID, "results": len(res)})
		results = res
	})
	if err != nil {
		return nil, err
	}
	if disconnected {
		// Mirrors the Connect-failure path above: the connection is dead,
		// the strand serving it must go too. Called here, after strand.Run
		// has returned, never from inside the closure that just ran on it.
		c.Disconnect()
	}
	return results, outErr
}

// QuerySQL is the convenience form: it binds sql plus positional args
// through pqtype and calls Query.
func (c *Connection) QuerySQL(ctx context.Context, sql string, args ...any) ([]*pqresult.Result, error) {
	q := pqquery.New(sql)
	params := make([]pqquery.Param, len(args))
	for i, a := range args {
		p, err := pqtype.Encode(a)
		if err != nil {
			return nil, err
		}
		params[i] = p
	}
	return c.Query(ctx, q.WithParams(params...))
}

// StartTransaction submits BEGIN TRANSACTION ISOLATION LEVEL <level>;
func (c *Connection) StartTransaction(ctx context.Context, level IsoLevel) error {
	if level == "" {
		level = Serializable
	}
	_, err := c.QuerySQL(ctx, fmt.Sprintf("BEGIN TRANSACTION ISOLATION LEVEL %s;", level))
	return err
}

// Commit submits END;
func (c *Connection) Commit(ctx context.Context) error {
	_, err := c.QuerySQL(ctx, "END;")
	return err
}

// Rollback submits ROLLBACK;
func (c *Connection) Rollback(ctx context.Context) error {
	_, err := c.QuerySQL(ctx, "ROLLBACK;")
	return err
}

// Disconnect closes the socket, finishes libpq, and stops the Connection's
// strand goroutine. Idempotent: safe to call more than once, and safe to
// call after Connect or Query has already torn the connection down.
func (c *Connection) Disconnect() error {
	var err error
	c.disconnectOnce.Do(func() {
		err = c.strand.Run(context.Background(), func() {
			c.disconnectUnsafe()
		})
		// Close must happen out here, after strand.Run has returned -- the
		// closure above runs on the strand goroutine itself, so closing the
		// strand from inside it would deadlock waiting for its own exit.
		c.closed.Store(true)
		c.strand.Close()
	})
	return err
}

func (c *Connection) disconnectUnsafe() {
	if c.native != nil {
		c.native.Finish()
		c.native = nil
	}
	c.sock = nil
}

// ErrInvalidKind reports whether err carries the given pqerr kind, for
// callers that want to branch on the taxonomy without importing pqerr
// directly in the hot path.
func ErrInvalidKind(err error, kind pqerr.Kind) bool {
	return pqerr.IsKind(err, kind)
}
