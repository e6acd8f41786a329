package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bookrent/rental-service/pkg/breaker"
	"github.com/stretchr/testify/require"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	fail := func() error { return errors.New("service error") }

	const timeout = 50 * time.Millisecond
	cb := breaker.New(10, timeout, 0.3, 3)

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}

	// enough failures to cross the percentile and trip the breaker
	for i := 0; i < 4; i++ {
		require.Error(t, cb.Call(fail))
	}
	require.ErrorIs(t, cb.Call(ok), breaker.ErrOpen)

	// after the timeout it probes in half-open and recovers on successes
	time.Sleep(timeout + 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Call(ok))
	}

	// a failure in half-open reopens immediately
	for i := 0; i < 4; i++ {
		_ = cb.Call(fail)
	}
	require.ErrorIs(t, cb.Call(ok), breaker.ErrOpen)
	time.Sleep(timeout + 10*time.Millisecond)
	require.Error(t, cb.Call(fail))
	require.ErrorIs(t, cb.Call(ok), breaker.ErrOpen)

	cb.Reset()
	require.NoError(t, cb.Call(ok))
}
