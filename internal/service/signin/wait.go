package signin

import (
	"context"
	"errors"
	"time"
)

// errWaitTimeout is returned by pollUntil when the condition never held.
var errWaitTimeout = errors.New("condition not met before timeout")

// pollUntil checks cond every interval until it holds or the wait is over.
// The first check runs immediately. Errors from cond count as "not yet".
func pollUntil(parent context.Context, timeout, interval time.Duration, cond func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ok, err := cond(ctx); err == nil && ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return err
			}

			return errWaitTimeout
		case <-ticker.C:
		}
	}
}

// sleep waits for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
