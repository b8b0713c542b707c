// Package retry wraps avast/retry-go behind an explicit, independently
// testable policy object: max attempts, fixed delay, and error classes that
// must never be retried.
package retry

import (
	"context"
	"errors"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// Policy describes how an operation is retried. Attempts counts the first
// try, so Attempts=3 means up to two retries after the initial failure.
type Policy struct {
	Attempts uint
	Delay    time.Duration
	Exempt   []error
}

// Do runs fn under the policy. Exempted errors abort immediately and are
// returned as-is; everything else is retried with a fixed delay until the
// attempts are exhausted, in which case the last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	return retrygo.Do(fn,
		retrygo.Context(ctx),
		retrygo.Attempts(p.Attempts),
		retrygo.Delay(p.Delay),
		retrygo.DelayType(retrygo.FixedDelay),
		retrygo.LastErrorOnly(true),
		retrygo.RetryIf(func(err error) bool {
			return !p.isExempt(err)
		}),
	)
}

func (p Policy) isExempt(err error) bool {
	for _, e := range p.Exempt {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
