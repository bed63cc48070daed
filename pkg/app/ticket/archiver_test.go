package ticket_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	app "github.com/opendesk/ticketd/pkg/app/ticket"
	domain "github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	chatmocks "github.com/opendesk/ticketd/pkg/infra/chatplatform/mocks"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
	"github.com/opendesk/ticketd/pkg/infra/registry"
	"github.com/opendesk/ticketd/pkg/infra/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newArchiver(reg domain.Registry, chat chatplatform.Client, logChannelID string) app.Archiver {
	logger := testLogger()
	return app.NewArchiver(logger, reg, chat, transcript.NewRenderer(logger, 0), "cat-archive", logChannelID)
}

func openTestTicket(t *testing.T, reg domain.Registry) *domain.Ticket {
	t.Helper()
	tk, err := reg.Create("owner-1", "support", "chan-1", time.Now().Add(-45*time.Minute))
	require.NoError(t, err)
	return tk
}

func TestArchiver_Archive_FullPipeline(t *testing.T) {
	reg := registry.NewInMemory()
	chat := new(chatmocks.Client)
	tk := openTestTicket(t, reg)

	chat.On("Channel", mock.Anything, "chan-1").
		Return(&chatplatform.Channel{ID: "chan-1", Name: "🌐・alice"}, nil).Once()
	chat.On("FetchHistory", mock.Anything, "chan-1").
		Return([]chatplatform.Message{{AuthorName: "alice", Content: "hello"}}, nil).Once()
	chat.On("GuildName", mock.Anything).Return("Acme Support", nil).Once()

	var delivered []string
	var mu sync.Mutex
	chat.On("SendMessage", mock.Anything, mock.Anything, mock.MatchedBy(func(msg chatplatform.Outbound) bool {
		return msg.Embed != nil && msg.Embed.Title == "🛑 Ticket Archived" && msg.Attachment != nil
	})).Run(func(args mock.Arguments) {
		mu.Lock()
		delivered = append(delivered, args.String(1))
		mu.Unlock()
	}).Return(nil).Twice()

	chat.On("MoveChannel", mock.Anything, "chan-1", "cat-archive").Return(nil).Once()
	chat.On("RenameChannel", mock.Anything, "chan-1", "closed-🌐・alice").Return(nil).Once()
	chat.On("EditPermission", mock.Anything, "chan-1", "owner-1", []string(nil),
		[]string{chatplatform.PermViewChannel, chatplatform.PermSendMessages}).Return(nil).Once()

	archiver := newArchiver(reg, chat, "chan-log")

	err := archiver.Archive(context.Background(), "chan-1", "Manually closed by <@staff-1>.", prometheus.TriggerManual)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"chan-1", "chan-log"}, delivered)
	_, ok := reg.Get("chan-1")
	assert.False(t, ok, "registry entry must be removed")
	_, ok = reg.ByOwner(tk.OwnerID)
	assert.False(t, ok)
	chat.AssertExpectations(t)
}

func TestArchiver_Archive_NotFound(t *testing.T) {
	reg := registry.NewInMemory()
	chat := new(chatmocks.Client)
	archiver := newArchiver(reg, chat, "")

	err := archiver.Archive(context.Background(), "chan-missing", "reason", prometheus.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chat.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiver_Archive_SecondCallIsNoOp(t *testing.T) {
	reg := registry.NewInMemory()
	chat := new(chatmocks.Client)
	openTestTicket(t, reg)

	chat.On("Channel", mock.Anything, "chan-1").Return(&chatplatform.Channel{ID: "chan-1", Name: "c"}, nil).Once()
	chat.On("FetchHistory", mock.Anything, "chan-1").Return([]chatplatform.Message{}, nil).Once()
	chat.On("GuildName", mock.Anything).Return("g", nil).Once()
	chat.On("SendMessage", mock.Anything, "chan-1", mock.Anything).Return(nil).Once()
	chat.On("MoveChannel", mock.Anything, "chan-1", "cat-archive").Return(nil).Once()
	chat.On("RenameChannel", mock.Anything, "chan-1", mock.Anything).Return(nil).Once()
	chat.On("EditPermission", mock.Anything, "chan-1", "owner-1", mock.Anything, mock.Anything).Return(nil).Once()

	archiver := newArchiver(reg, chat, "")

	require.NoError(t, archiver.Archive(context.Background(), "chan-1", "first", prometheus.TriggerManual))
	assert.ErrorIs(t, archiver.Archive(context.Background(), "chan-1", "second", prometheus.TriggerManual), domain.ErrNotFound)

	// Exactly one set of external side effects.
	chat.AssertNumberOfCalls(t, "SendMessage", 1)
	chat.AssertNumberOfCalls(t, "MoveChannel", 1)
}

func TestArchiver_Archive_ConcurrentCallsSingleWinner(t *testing.T) {
	reg := registry.NewInMemory()
	chat := new(chatmocks.Client)
	openTestTicket(t, reg)

	chat.On("Channel", mock.Anything, "chan-1").Return(&chatplatform.Channel{ID: "chan-1", Name: "c"}, nil)
	chat.On("FetchHistory", mock.Anything, "chan-1").Return([]chatplatform.Message{}, nil)
	chat.On("GuildName", mock.Anything).Return("g", nil)
	chat.On("SendMessage", mock.Anything, "chan-1", mock.Anything).Return(nil)
	chat.On("MoveChannel", mock.Anything, "chan-1", "cat-archive").Return(nil)
	chat.On("RenameChannel", mock.Anything, "chan-1", mock.Anything).Return(nil)
	chat.On("EditPermission", mock.Anything, "chan-1", "owner-1", mock.Anything, mock.Anything).Return(nil)

	archiver := newArchiver(reg, chat, "")

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- archiver.Archive(context.Background(), "chan-1", "race", prometheus.TriggerManual)
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, domain.ErrNotFound)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, callers-1, lost)
	chat.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestArchiver_Archive_ExternalFailuresStillClearRegistry(t *testing.T) {
	reg := registry.NewInMemory()
	chat := new(chatmocks.Client)
	openTestTicket(t, reg)

	boom := errors.New("platform down")
	chat.On("Channel", mock.Anything, "chan-1").Return(nil, boom)
	chat.On("FetchHistory", mock.Anything, "chan-1").Return(nil, boom)
	chat.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(boom)
	chat.On("MoveChannel", mock.Anything, "chan-1", "cat-archive").Return(boom)
	chat.On("RenameChannel", mock.Anything, "chan-1", mock.Anything).Return(boom)
	chat.On("EditPermission", mock.Anything, "chan-1", "owner-1", mock.Anything, mock.Anything).Return(boom)

	archiver := newArchiver(reg, chat, "chan-log")

	err := archiver.Archive(context.Background(), "chan-1", "reason", prometheus.TriggerInactivity)
	assert.NoError(t, err, "external failures are logged, not escalated")

	_, ok := reg.Get("chan-1")
	assert.False(t, ok, "registry must never retain a zombie ticket")

	// Owner can open a fresh ticket immediately.
	_, err = reg.Create("owner-1", "support", "chan-2", time.Now())
	assert.NoError(t, err)
}

func TestArchiver_Archive_TranscriptFailureSkipsAttachment(t *testing.T) {
	reg := registry.NewInMemory()
	chat := new(chatmocks.Client)
	openTestTicket(t, reg)

	chat.On("Channel", mock.Anything, "chan-1").Return(&chatplatform.Channel{ID: "chan-1", Name: "c"}, nil).Once()
	chat.On("FetchHistory", mock.Anything, "chan-1").Return(nil, errors.New("history unavailable")).Once()
	chat.On("SendMessage", mock.Anything, "chan-1", mock.MatchedBy(func(msg chatplatform.Outbound) bool {
		return msg.Embed != nil && msg.Attachment == nil
	})).Return(nil).Once()
	chat.On("MoveChannel", mock.Anything, "chan-1", "cat-archive").Return(nil).Once()
	chat.On("RenameChannel", mock.Anything, "chan-1", mock.Anything).Return(nil).Once()
	chat.On("EditPermission", mock.Anything, "chan-1", "owner-1", mock.Anything, mock.Anything).Return(nil).Once()

	archiver := newArchiver(reg, chat, "")

	require.NoError(t, archiver.Archive(context.Background(), "chan-1", "reason", prometheus.TriggerManual))
	chat.AssertExpectations(t)
}
