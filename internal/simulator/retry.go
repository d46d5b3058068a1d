package simulator

import (
	"context"
	"time"
)

// withRetry runs fn up to maxAttempts times with exponential backoff
// starting at base, mirroring the teacher's sleepWithContext-driven retry
// loop around serialization failures.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt == maxAttempts-1 {
			break
		}
		backoff := base * time.Duration(1<<attempt)
		if err := sleepWithContext(ctx, backoff); err != nil {
			return err
		}
	}
	return lastErr
}

// throttle pauses between consecutive writes in the same batch to stay
// under rate limits, per spec.md §4.5 step 9.
func throttle(ctx context.Context, d time.Duration) error {
	return sleepWithContext(ctx, d)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
