package notify_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/opendesk/ticketd/pkg/app/notify"
	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/registry"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTicket(t *testing.T, reg ticket.Registry, opened time.Time) *ticket.Ticket {
	t.Helper()
	tk, err := reg.Create("owner-1", "support", "chan-1", opened)
	require.NoError(t, err)
	return tk
}

func TestGate_Try_WindowScenario(t *testing.T) {
	reg := registry.NewInMemory()
	gate := notify.NewGate(testLogger(), reg, 5*time.Minute)

	t0 := time.Now()
	tk := openTicket(t, reg, t0)

	// No prior notification: allowed.
	d := gate.Try(tk, ticket.NotifySupport, t0)
	assert.True(t, d.Allowed)

	gate.Record("chan-1", ticket.NotifySupport, t0)
	tk, _ = reg.Get("chan-1")

	// Inside the window: denied with the remaining wait.
	d = gate.Try(tk, ticket.NotifySupport, t0.Add(3*time.Minute))
	assert.False(t, d.Allowed)
	assert.Equal(t, 2*time.Minute, d.Remaining)

	// Exactly at the window boundary counts as elapsed.
	d = gate.Try(tk, ticket.NotifySupport, t0.Add(5*time.Minute))
	assert.True(t, d.Allowed)
}

func TestGate_Try_DoesNotMutate(t *testing.T) {
	reg := registry.NewInMemory()
	gate := notify.NewGate(testLogger(), reg, 5*time.Minute)

	t0 := time.Now()
	tk := openTicket(t, reg, t0)

	_ = gate.Try(tk, ticket.NotifySupport, t0)
	_ = gate.Try(tk, ticket.NotifySupport, t0)

	fresh, _ := reg.Get("chan-1")
	assert.True(t, fresh.Cooldowns.Support.IsZero())
}

func TestGate_KindsAreIndependent(t *testing.T) {
	reg := registry.NewInMemory()
	gate := notify.NewGate(testLogger(), reg, 5*time.Minute)

	t0 := time.Now()
	openTicket(t, reg, t0)
	gate.Record("chan-1", ticket.NotifySupport, t0)

	tk, _ := reg.Get("chan-1")
	assert.False(t, gate.Try(tk, ticket.NotifySupport, t0.Add(time.Minute)).Allowed)
	assert.True(t, gate.Try(tk, ticket.NotifyAuthor, t0.Add(time.Minute)).Allowed)
}

func TestGate_Fire_RecordsOnlyOnSendSuccess(t *testing.T) {
	reg := registry.NewInMemory()
	gate := notify.NewGate(testLogger(), reg, 5*time.Minute)

	t0 := time.Now()
	openTicket(t, reg, t0)

	boom := errors.New("send failed")
	d, err := gate.Fire(context.Background(), "chan-1", ticket.NotifySupport, t0, func(context.Context) error {
		return boom
	})
	assert.True(t, d.Allowed)
	assert.ErrorIs(t, err, boom)

	// Failed delivery must not burn the window.
	tk, _ := reg.Get("chan-1")
	assert.True(t, tk.Cooldowns.Support.IsZero())

	d, err = gate.Fire(context.Background(), "chan-1", ticket.NotifySupport, t0, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	tk, _ = reg.Get("chan-1")
	assert.True(t, tk.Cooldowns.Support.Equal(t0))
}

func TestGate_Fire_NotFound(t *testing.T) {
	reg := registry.NewInMemory()
	gate := notify.NewGate(testLogger(), reg, 5*time.Minute)

	_, err := gate.Fire(context.Background(), "chan-missing", ticket.NotifySupport, time.Now(), func(context.Context) error {
		t.Fatal("send must not run for a missing ticket")
		return nil
	})
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestGate_Fire_ConcurrentAttemptsSingleSend(t *testing.T) {
	reg := registry.NewInMemory()
	gate := notify.NewGate(testLogger(), reg, 5*time.Minute)

	t0 := time.Now()
	openTicket(t, reg, t0)

	var mu sync.Mutex
	sends := 0

	const attempts = 20
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = gate.Fire(context.Background(), "chan-1", ticket.NotifySupport, t0, func(context.Context) error {
				mu.Lock()
				sends++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sends, "only one attempt per window may reach the platform")
}
