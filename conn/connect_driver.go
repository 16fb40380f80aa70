package conn

import (
	"context"
	"errors"

	"github.com/nbpq/nbpq/internal/iowait"
	"github.com/nbpq/nbpq/internal/libpq"
	"github.com/nbpq/nbpq/pqerr"
)

// connectDriver drives one non-blocking connect attempt to completion, per
// spec.md §4.1. It never mutates Connection before success.
type connectDriver struct {
	connStr string
}

// run implements the algorithm verbatim:
//  1. PQconnectdbParams with dbname=<connStr>.
//  2. wrap PQsocket(handle) in a Socket.
//  3. loop PQconnectPoll, mapping READING/WRITING to socket waits, OK to
//     success, anything else (including FAILED) to ConnectFailed.
//  4. rebuild the socket if the fd changes between iterations.
//  5. any I/O error during a wait aborts with that error.
func (d *connectDriver) run(ctx context.Context) (*libpq.Connection, *iowait.Socket, error) {
	native := libpq.ConnectdbParams(d.connStr)
	if native == nil {
		return nil, nil, pqerr.New(pqerr.ConnAllocateFailed, errors.New("PQconnectdbParams returned nil"))
	}

	sock := iowait.NewSocket(native.Socket())

	for {
		status := native.ConnectPoll()

		switch status {
		case libpq.PollingOK:
			return native, sock, nil

		case libpq.PollingReading:
			if err := d.waitAndRebuild(ctx, native, sock, true); err != nil {
				native.Finish()
				return nil, nil, err
			}

		case libpq.PollingWriting:
			if err := d.waitAndRebuild(ctx, native, sock, false); err != nil {
				native.Finish()
				return nil, nil, err
			}

		default: // PGRES_POLLING_FAILED or anything unrecognized
			msg := native.ErrorMessage()
			native.Finish()
			return nil, nil, pqerr.New(pqerr.ConnectFailed, errors.New(msg))
		}
	}
}

// waitAndRebuild rebuilds sock around libpq's current fd if it changed --
// libpq may reopen the socket during SSL negotiation -- then waits for the
// requested readiness.
func (d *connectDriver) waitAndRebuild(ctx context.Context, native *libpq.Connection, sock *iowait.Socket, readable bool) error {
	if fd := native.Socket(); fd != sock.FD() {
		sock.Rebuild(fd)
	}

	var err error
	if readable {
		err = sock.WaitReadable(ctx)
	} else {
		err = sock.WaitWritable(ctx)
	}

	if err == iowait.ErrCanceled {
		return err
	}
	if err != nil {
		return pqerr.New(pqerr.NetworkError, err)
	}
	return nil
}
