package conn

import (
	"context"
	"errors"

	"github.com/nbpq/nbpq/internal/iowait"
	"github.com/nbpq/nbpq/internal/libpq"
	"github.com/nbpq/nbpq/pqerr"
	"github.com/nbpq/nbpq/pqquery"
	"github.com/nbpq/nbpq/pqresult"
)

type queryState int

const (
	stateStarting queryState = iota
	stateWriting
	stateReading
	stateDone
)

// queryDriver drives one parameterized query to completion, per spec.md
// §4.2. It processes exactly one query at a time against a ready native
// libpq connection; the pool/Connection are responsible for never handing
// the same connection to two concurrent callers.
type queryDriver struct {
	native *libpq.Connection
	sock   *iowait.Socket
}

// errCanceled is queryDriver's private sentinel distinguishing cooperative
// cancellation (caller unwinds, no disconnect) from every other failure
// (connection must be disconnected).
var errCanceled = ErrQueryCanceled

// ErrQueryCanceled is what the query driver reports when ctx is canceled
// during one of its socket waits. The connection is left connected; the
// caller's unwinding is expected to be the only effect, per spec.md §4.2's
// cooperative cancellation semantics. Connection.Query itself returns
// ctx.Err() in that case, since it stops waiting on the strand as soon as
// ctx is done.
var ErrQueryCanceled = errors.New("conn: query wait canceled")

func (d *queryDriver) run(ctx context.Context, q pqquery.Query) ([]*pqresult.Result, error) {
	state := stateStarting

	for {
		switch state {
		case stateStarting:
			values, formats := q.Values()
			cformats := make([]libpq.Format, len(formats))
			for i, f := range formats {
				cformats[i] = libpq.Format(f)
			}
			if !d.native.SendQueryParams(q.SQL, values, cformats) {
				return nil, pqerr.New(pqerr.QueryFailed, errors.New(d.native.ErrorMessage()))
			}
			state = stateWriting

		case stateWriting:
			switch d.native.Flush() {
			case -1:
				return nil, pqerr.New(pqerr.NetworkError, errors.New(d.native.ErrorMessage()))
			case 1:
				if err := d.wait(ctx, false); err != nil {
					if err == errCanceled {
						return nil, err
					}
					return nil, err
				}
				// stay in stateWriting
			case 0:
				state = stateReading
			}

		case stateReading:
			if !d.native.ConsumeInput() {
				return nil, pqerr.New(pqerr.QueryFailed, errors.New(d.native.ErrorMessage()))
			}
			if !d.native.IsBusy() {
				return d.drain(), nil
			}
			if err := d.wait(ctx, true); err != nil {
				if err == errCanceled {
					return nil, err
				}
				return nil, err
			}
			// stay in stateReading

		case stateDone:
			return nil, nil
		}
	}
}

// wait waits for readiness and classifies the result: cooperative
// cancellation returns errCanceled so the caller can unwind without
// disconnecting; any other I/O error is wrapped as NetworkError.
func (d *queryDriver) wait(ctx context.Context, readable bool) error {
	var err error
	if readable {
		err = d.sock.WaitReadable(ctx)
	} else {
		err = d.sock.WaitWritable(ctx)
	}
	if err == iowait.ErrCanceled {
		return errCanceled
	}
	if err != nil {
		return pqerr.New(pqerr.NetworkError, err)
	}
	return nil
}

// drain calls PQgetResult until it returns nil, wrapping each result.
// Draining zero results (send succeeded, connection torn down before read)
// is treated as success with an empty slice, per spec.md §9.
func (d *queryDriver) drain() []*pqresult.Result {
	var out []*pqresult.Result
	for {
		raw := d.native.GetResult()
		if raw == nil {
			return out
		}
		out = append(out, pqresult.Wrap(raw))
	}
}
