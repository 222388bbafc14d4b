package waitview

import (
	"context"
	"errors"
	"time"

	"github.com/msto63/webr/internal/webr"
)

// ErrNotReady is returned by Poll when the timeout passes first
var ErrNotReady = errors.New("service not ready before timeout")

// Attempt describes one probe of Poll
type Attempt struct {
	N      int
	Status *webr.HealthStatus
	Err    error
}

// Poll probes at a fixed interval until the service is ready, ctx ends or
// timeout passes. It is the plain variant of the wait view for
// non-interactive output. onAttempt may be nil.
func Poll(ctx context.Context, prober Prober, interval, timeout time.Duration, onAttempt func(Attempt)) (*webr.HealthStatus, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for n := 1; ; n++ {
		status, err := prober.Health(ctx)
		if onAttempt != nil {
			onAttempt(Attempt{N: n, Status: status, Err: err})
		}
		if err == nil && status.Ready {
			return status, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				if lastErr != nil {
					return nil, errors.Join(ErrNotReady, lastErr)
				}
				return nil, ErrNotReady
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
