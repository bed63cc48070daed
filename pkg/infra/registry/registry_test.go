package registry_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_CreateAndGet(t *testing.T) {
	reg := registry.NewInMemory()
	now := time.Now()

	created, err := reg.Create("owner-1", "support", "chan-1", now)
	require.NoError(t, err)
	assert.Equal(t, "chan-1", created.ChannelID)
	assert.Equal(t, "owner-1", created.OwnerID)
	assert.NotEmpty(t, created.Protocol)
	assert.Equal(t, "owner-1", created.LastInteractionBy)
	assert.False(t, created.Warned)

	got, ok := reg.Get("chan-1")
	require.True(t, ok)
	assert.Equal(t, created.Protocol, got.Protocol)

	byOwner, ok := reg.ByOwner("owner-1")
	require.True(t, ok)
	assert.Equal(t, "chan-1", byOwner.ChannelID)
}

func TestInMemory_Create_RejectsSecondTicketForOwner(t *testing.T) {
	reg := registry.NewInMemory()
	now := time.Now()

	_, err := reg.Create("owner-1", "support", "chan-1", now)
	require.NoError(t, err)

	_, err = reg.Create("owner-1", "report", "chan-2", now)
	assert.ErrorIs(t, err, ticket.ErrAlreadyOpen)

	_, ok := reg.Get("chan-2")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestInMemory_Create_ConcurrentAttemptsSingleWinner(t *testing.T) {
	reg := registry.NewInMemory()
	now := time.Now()

	const attempts = 50
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := reg.Create("owner-1", "support", fmt.Sprintf("chan-%d", i), now)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ticket.ErrAlreadyOpen)
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, 1, reg.Len())
}

func TestInMemory_Touch(t *testing.T) {
	reg := registry.NewInMemory()
	opened := time.Now()
	_, err := reg.Create("owner-1", "support", "chan-1", opened)
	require.NoError(t, err)

	later := opened.Add(5 * time.Minute)
	reg.Touch("chan-1", "staff-9", later)

	got, ok := reg.Get("chan-1")
	require.True(t, ok)
	assert.Equal(t, "staff-9", got.LastInteractionBy)
	assert.True(t, got.LastInteractionAt.Equal(later))

	// Unknown channel is a no-op, not a panic.
	reg.Touch("chan-unknown", "staff-9", later)
}

func TestInMemory_GetReturnsSnapshot(t *testing.T) {
	reg := registry.NewInMemory()
	now := time.Now()
	_, err := reg.Create("owner-1", "support", "chan-1", now)
	require.NoError(t, err)

	got, _ := reg.Get("chan-1")
	got.Warned = true
	got.LastInteractionBy = "tampered"

	fresh, _ := reg.Get("chan-1")
	assert.False(t, fresh.Warned)
	assert.Equal(t, "owner-1", fresh.LastInteractionBy)
}

func TestInMemory_MarkWarnedAndRecordNotify(t *testing.T) {
	reg := registry.NewInMemory()
	opened := time.Now()
	_, err := reg.Create("owner-1", "support", "chan-1", opened)
	require.NoError(t, err)

	warnedAt := opened.Add(20 * time.Minute)
	reg.MarkWarned("chan-1", warnedAt)

	notifyAt := opened.Add(25 * time.Minute)
	reg.RecordNotify("chan-1", ticket.NotifySupport, notifyAt)

	got, ok := reg.Get("chan-1")
	require.True(t, ok)
	assert.True(t, got.Warned)
	assert.True(t, got.WarnedAt.Equal(warnedAt))
	assert.True(t, got.Cooldowns.Support.Equal(notifyAt))
	assert.True(t, got.Cooldowns.Author.IsZero())
}

func TestInMemory_Remove(t *testing.T) {
	reg := registry.NewInMemory()
	now := time.Now()
	_, err := reg.Create("owner-1", "support", "chan-1", now)
	require.NoError(t, err)

	assert.True(t, reg.Remove("chan-1"))
	assert.False(t, reg.Remove("chan-1"))

	_, ok := reg.Get("chan-1")
	assert.False(t, ok)
	_, ok = reg.ByOwner("owner-1")
	assert.False(t, ok)

	// Owner can open a fresh ticket after removal.
	_, err = reg.Create("owner-1", "report", "chan-2", now)
	assert.NoError(t, err)
}

func TestInMemory_List(t *testing.T) {
	reg := registry.NewInMemory()
	now := time.Now()
	for i := 0; i < 3; i++ {
		_, err := reg.Create(fmt.Sprintf("owner-%d", i), "support", fmt.Sprintf("chan-%d", i), now)
		require.NoError(t, err)
	}

	list := reg.List()
	assert.Len(t, list, 3)

	// Mutating a listed snapshot must not leak into the registry.
	list[0].Warned = true
	fresh, _ := reg.Get(list[0].ChannelID)
	assert.False(t, fresh.Warned)
}
