// Package strand implements the serialization context spec.md calls a
// "strand": a single goroutine draining a mailbox so that handlers posted to
// it never run concurrently with each other. Connection and Pool each own
// one strand and pin all state-mutating work to it, the same way the pack's
// proxy examples (JeelKantaria-db-bouncer's TenantPool) serialize pool
// mutation behind a single mutex -- a strand is that same guarantee
// expressed as an actor loop instead of a lock, which is the idiom this
// module's cooperative, single-goroutine-per-resource model calls for.
package strand

import "context"

// Strand serializes execution of posted functions in FIFO order.
type Strand struct {
	mailbox chan func()
	done    chan struct{}
}

// New starts a strand's drain loop and returns immediately.
func New() *Strand {
	s := &Strand{
		mailbox: make(chan func(), 64),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Strand) run() {
	defer close(s.done)
	for fn := range s.mailbox {
		fn()
	}
}

// Post enqueues fn to run on the strand and returns immediately without
// waiting for fn to execute.
func (s *Strand) Post(fn func()) {
	s.mailbox <- fn
}

// Run enqueues fn and blocks until it has executed or ctx is done. If ctx is
// done first, fn may still run later; callers must not assume otherwise.
func (s *Strand) Run(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	s.mailbox <- func() {
		fn()
		close(done)
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new work at once and blocks until already-queued
// work has drained. Post or Run on a closed Strand panics.
func (s *Strand) Close() {
	close(s.mailbox)
	<-s.done
}
