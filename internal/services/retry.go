package services

import (
	"context"
	"time"

	gax "github.com/googleapis/gax-go/v2"

	"github.com/woodcraft-atelier/api/internal/repositories"
)

const defaultCounterRetryWindow = 3 * time.Second

// retryUnavailable calls fn until it succeeds, fails with an error other than
// store unavailability, or the next backoff pause would overrun window.
func retryUnavailable(ctx context.Context, window time.Duration, fn func(context.Context) error) (attempts int, err error) {
	if window <= 0 {
		window = defaultCounterRetryWindow
	}
	backoff := gax.Backoff{
		Initial:    50 * time.Millisecond,
		Max:        800 * time.Millisecond,
		Multiplier: 2,
	}
	deadline := time.Now().Add(window)
	for {
		attempts++
		err = fn(ctx)
		if err == nil || !repositories.IsUnavailable(err) {
			return attempts, err
		}
		pause := backoff.Pause()
		if time.Now().Add(pause).After(deadline) {
			return attempts, err
		}
		if sleepErr := gax.Sleep(ctx, pause); sleepErr != nil {
			return attempts, err
		}
	}
}
