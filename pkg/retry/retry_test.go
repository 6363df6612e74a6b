package retry_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"marketgw/pkg/retry"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := retry.Do(func() (string, error) {
		calls++
		return "ok", nil
	}, 3, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := retry.Do(func() (int, error) {
		calls++
		if calls < 3 {
			return 0, fmt.Errorf("transient failure %d", calls)
		}
		return 42, nil
	}, 3, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttemptsAndPreservesError(t *testing.T) {
	sentinel := errors.New("upstream rejected the request")
	calls := 0
	_, err := retry.Do(func() (string, error) {
		calls++
		return "", fmt.Errorf("attempt %d: %w", calls, sentinel)
	}, 3, time.Millisecond)

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	// The final attempt's error must come back unchanged.
	assert.EqualError(t, err, "attempt 3: upstream rejected the request")
	assert.ErrorIs(t, err, sentinel)
}

func TestDo_WaitsBetweenAttempts(t *testing.T) {
	delay := 20 * time.Millisecond
	start := time.Now()
	_, err := retry.Do(func() (struct{}, error) {
		return struct{}{}, errors.New("always fails")
	}, 3, delay)

	assert.Error(t, err)
	// Two delays for three attempts; no sleep after the final failure.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestDo_ZeroAttemptsStillInvokesOnce(t *testing.T) {
	calls := 0
	result, err := retry.Do(func() (string, error) {
		calls++
		return "ran", nil
	}, 0, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, "ran", result)
	assert.Equal(t, 1, calls)
}
