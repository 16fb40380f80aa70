package strand_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbpq/nbpq/internal/strand"
)

func TestRunExecutesFnAndWaits(t *testing.T) {
	s := strand.New()
	defer s.Close()

	var ran bool
	err := s.Run(context.Background(), func() { ran = true })
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPostedWorkRunsInFIFOOrder(t *testing.T) {
	s := strand.New()
	defer s.Close()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		s.Post(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for posted work to drain")
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunReturnsCtxErrOnCancel(t *testing.T) {
	s := strand.New()
	defer s.Close()

	block := make(chan struct{})
	defer close(block)
	s.Post(func() { <-block }) // occupy the strand

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseDrainsPendingWork(t *testing.T) {
	s := strand.New()

	var ran bool
	s.Post(func() { ran = true })
	s.Close()

	assert.True(t, ran)
}
