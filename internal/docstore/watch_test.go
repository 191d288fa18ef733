package docstore

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_NotifiesOnMarkerChange(t *testing.T) {
	var version atomic.Value
	version.Store("v1")

	marker := func(context.Context) (string, error) {
		return version.Load().(string), nil
	}

	changes := make(chan struct{}, 10)
	unsubscribe, err := Watch(context.Background(), 5*time.Millisecond, marker, func() {
		changes <- struct{}{}
	})
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case <-changes:
		t.Fatal("the initial marker must not be reported")
	case <-time.After(30 * time.Millisecond):
	}

	version.Store("v2")

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestWatch_InitialMarkerError(t *testing.T) {
	marker := func(context.Context) (string, error) {
		return "", assert.AnError
	}

	unsubscribe, err := Watch(context.Background(), time.Millisecond, marker, func() {})

	require.Error(t, err)
	assert.Nil(t, unsubscribe)
}

func TestWatch_KeepsPollingAfterMarkerErrors(t *testing.T) {
	var calls atomic.Int32

	marker := func(context.Context) (string, error) {
		n := calls.Add(1)
		switch {
		case n == 1:
			return "v1", nil
		case n < 4:
			return "", assert.AnError
		default:
			return "v2", nil
		}
	}

	changes := make(chan struct{}, 10)
	unsubscribe, err := Watch(context.Background(), 5*time.Millisecond, marker, func() {
		changes <- struct{}{}
	})
	require.NoError(t, err)

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	unsubscribe()
	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "marker must not be read after unsubscribe")
}
