package timeutils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrAllAttemptsFailed = errors.New("all attempts failed")
)

// Retry calls function once and then once more after each delay while
// needRetry says so. The last error is wrapped together with
// ErrAllAttemptsFailed when the delays run out.
func Retry[T any](
	ctx context.Context,
	attemptDelays []time.Duration,
	function func(context.Context) (T, error),
	needRetry func(T, error) bool,
) (T, error) {
	var zero T
	for _, delay := range attemptDelays {
		res, err := function(ctx)
		if !needRetry(res, err) {
			return res, err
		}
		if err := SleepCtx(ctx, delay); err != nil {
			return zero, err
		}
	}
	res, err := function(ctx)
	if !needRetry(res, err) {
		return res, err
	}
	if err == nil {
		return zero, ErrAllAttemptsFailed
	}
	return zero, fmt.Errorf("%w: %w", ErrAllAttemptsFailed, err)
}

func SleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
