package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/logger"
)

// DefaultPollInterval is used when a store is opened without an interval
const DefaultPollInterval = 30 * time.Second

// MarkerFunc returns a marker that changes whenever the watched collection changes
type MarkerFunc func(ctx context.Context) (string, error)

// Watch polls marker every interval and calls onChange when the marker moves.
// The first marker is read before Watch returns and is never reported as a change.
func Watch(ctx context.Context, interval time.Duration, marker MarkerFunc, onChange func()) (func(), error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	last, err := marker(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read initial change marker: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				current, err := marker(watchCtx)
				if err != nil {
					if watchCtx.Err() == nil {
						logger.Log.WithError(err).Warn("document watch marker read failed")
					}
					continue
				}
				if current != last {
					last = current
					onChange()
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}
