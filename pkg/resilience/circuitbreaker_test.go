package resilience

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligent-chatbot/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func testConfig() Config {
	return Config{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		RetryTimeout:     50 * time.Millisecond,
	}
}

var errDownstream = errors.New("downstream failure")

func TestExecutePassesThroughWhenClosed(t *testing.T) {
	cb := New(testConfig(), testLogger())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecuteOpensAfterThreshold(t *testing.T) {
	cb := New(testConfig(), testLogger())

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errDownstream })
		assert.ErrorIs(t, err, errDownstream)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error {
		t.Fatal("fn must not run while the circuit is open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestExecuteRecoversViaHalfOpen(t *testing.T) {
	cb := New(testConfig(), testLogger())

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errDownstream })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(60 * time.Millisecond)

	// Two probe successes close the circuit again.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecuteReopensOnHalfOpenFailure(t *testing.T) {
	cb := New(testConfig(), testLogger())

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errDownstream })
	}
	time.Sleep(60 * time.Millisecond)

	err := cb.Execute(func() error { return errDownstream })
	assert.ErrorIs(t, err, errDownstream)
	assert.Equal(t, StateOpen, cb.State())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(testConfig(), testLogger())

	cb.Execute(func() error { return errDownstream })
	cb.Execute(func() error { return errDownstream })
	require.NoError(t, cb.Execute(func() error { return nil }))

	// The streak was broken, so two more failures stay under the threshold.
	cb.Execute(func() error { return errDownstream })
	cb.Execute(func() error { return errDownstream })
	assert.Equal(t, StateClosed, cb.State())
}
