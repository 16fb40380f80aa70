package idgen_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbpq/nbpq/internal/idgen"
)

func TestNextConnectionIDIsMonotonic(t *testing.T) {
	a := idgen.NextConnectionID()
	b := idgen.NextConnectionID()
	assert.Less(t, a, b)
}

func TestNextConnectionIDIsUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			ids <- idgen.NextConnectionID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
