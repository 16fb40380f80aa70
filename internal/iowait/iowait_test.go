package iowait_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nbpq/nbpq/internal/iowait"
)

func TestWaitReadableReturnsWhenDataArrives(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	sock := iowait.NewSocket(int(r.Fd()))

	errCh := make(chan error, 1)
	go func() { errCh <- sock.WaitReadable(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for readability")
	}
}

func TestWaitReadableReturnsErrCanceledOnCtxDone(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	sock := iowait.NewSocket(int(r.Fd()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = sock.WaitReadable(ctx)
	require.ErrorIs(t, err, iowait.ErrCanceled)
}

func TestRebuildPointsAtNewFD(t *testing.T) {
	sock := iowait.NewSocket(3)
	require.Equal(t, 3, sock.FD())
	sock.Rebuild(7)
	require.Equal(t, 7, sock.FD())
}
