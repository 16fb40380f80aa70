// Package iowait provides cooperative, cancellable readiness waits on a raw
// socket file descriptor. The connect and query drivers use it to translate
// libpq's polling protocol into blocking-free suspension points, matching
// the role golang.org/x/sys/unix.Poll plays in the pack's proxy examples
// (JeelKantaria-db-bouncer, mevdschee-tqdbproxy) for raw-fd readiness.
package iowait

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// ErrCanceled is returned when ctx is done before the fd becomes ready. The
// connect/query drivers treat this as benign cooperative cancellation, not a
// network failure.
var ErrCanceled = errors.New("iowait: wait canceled")

// slice is how long a single poll(2) call blocks before re-checking ctx.
// Keeping this short bounds cancellation latency without busy-looping.
const slice = 50 * time.Millisecond

// Socket wraps one libpq-owned file descriptor. It never closes or dups the
// fd -- ownership of the fd itself always stays with libpq's PGconn.
type Socket struct {
	fd int
}

// NewSocket binds a Socket to fd. Call Rebuild instead of constructing a new
// Socket if libpq reports a changed fd for the same Connection.
func NewSocket(fd int) *Socket {
	return &Socket{fd: fd}
}

func (s *Socket) FD() int {
	return s.fd
}

// Rebuild points the Socket at a new fd, matching spec.md's "rebuild the
// socket around the new fd" step for SSL renegotiation during connect.
func (s *Socket) Rebuild(fd int) {
	s.fd = fd
}

// WaitReadable blocks until the fd is readable, ctx is done, or an I/O error
// occurs on the fd itself.
func (s *Socket) WaitReadable(ctx context.Context) error {
	return s.wait(ctx, unix.POLLIN)
}

// WaitWritable blocks until the fd is writable, ctx is done, or an I/O error
// occurs on the fd itself.
func (s *Socket) WaitWritable(ctx context.Context) error {
	return s.wait(ctx, unix.POLLOUT)
}

func (s *Socket) wait(ctx context.Context, events int16) error {
	for {
		select {
		case <-ctx.Done():
			return ErrCanceled
		default:
		}

		fds := []unix.PollFd{{Fd: int32(s.fd), Events: events}}
		n, err := unix.Poll(fds, int(slice/time.Millisecond))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			continue // slice elapsed, nothing ready yet; recheck ctx
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return errors.New("iowait: socket error")
		}
		if fds[0].Revents&events != 0 {
			return nil
		}
	}
}
