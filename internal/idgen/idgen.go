// Package idgen hands out process-wide monotonically increasing identifiers
// used only for log correlation, per spec.md §9 "Global identifier counter".
// No correctness invariant anywhere in this module depends on these values.
package idgen

import "sync/atomic"

var connectionSeq uint64

// NextConnectionID returns the next connection identifier.
func NextConnectionID() uint64 {
	return atomic.AddUint64(&connectionSeq, 1)
}
