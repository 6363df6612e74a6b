// Package retry provides a bounded, fixed-delay retry wrapper for outbound
// vendor calls.
//
// Known limitations, kept for compatibility with the vendor integrations:
// the delay is fixed (no backoff, no jitter), and every error is retried
// indiscriminately, including deterministic rejections that cannot succeed
// on a later attempt.
package retry

import "time"

// Do invokes op up to attempts times (including the first call), sleeping
// delay between attempts. The success value is returned as soon as op
// succeeds; once attempts are exhausted the last error is returned unchanged
// so callers can still inspect the underlying cause.
func Do[T any](op func() (T, error), attempts int, delay time.Duration) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var result T
	var err error
	for i := 0; i < attempts; i++ {
		result, err = op()
		if err == nil {
			return result, nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return result, err
}
