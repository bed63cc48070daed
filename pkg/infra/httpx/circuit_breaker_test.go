package httpx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	breaker := NewCircuitBreaker("test", time.Second, 3)

	calls := 0
	err := breaker.Execute(func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCircuitBreaker_WrapsFailure(t *testing.T) {
	breaker := NewCircuitBreaker("chat-api", time.Second, 3)
	boom := errors.New("boom")

	err := breaker.Execute(func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chat-api")
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := NewCircuitBreaker("test", time.Minute, 2)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_ = breaker.Execute(func() error { return boom })
	}

	calls := 0
	err := breaker.Execute(func() error {
		calls++
		return nil
	})

	assert.Error(t, err)
	assert.Equal(t, 0, calls, "open breaker must fail fast without invoking fn")
}
