package migrate

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// Retry retries f with exponential backoff. It is used for connection
// dialing and pinging only, never for batch inserts.
func Retry(ctx context.Context, maxRetries uint64, timeout time.Duration, f func(context.Context) error) error {
	start := time.Now()
	retries := 0
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	err := backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return f(ctx)
	}, b, func(err error, duration time.Duration) {
		retries++
	})
	if err != nil {
		return errors.Wrapf(err, "failed after %d retries and total duration of %v", retries, time.Since(start))
	}
	return nil
}
