package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/opendesk/ticketd/pkg/app/notify"
	"github.com/opendesk/ticketd/pkg/domain/ticket"
)

type Gate struct {
	mock.Mock
}

func (m *Gate) Try(t *ticket.Ticket, kind ticket.NotifyKind, now time.Time) notify.Decision {
	args := m.Called(t, kind, now)
	d, _ := args.Get(0).(notify.Decision)
	return d
}

func (m *Gate) Record(channelID string, kind ticket.NotifyKind, now time.Time) {
	m.Called(channelID, kind, now)
}

func (m *Gate) Fire(ctx context.Context, channelID string, kind ticket.NotifyKind, now time.Time, send func(ctx context.Context) error) (notify.Decision, error) {
	args := m.Called(ctx, channelID, kind, now, send)
	d, _ := args.Get(0).(notify.Decision)
	return d, args.Error(1)
}

type Pinger struct {
	mock.Mock
}

func (m *Pinger) PingSupport(ctx context.Context, channelID string, now time.Time) (notify.Decision, error) {
	args := m.Called(ctx, channelID, now)
	d, _ := args.Get(0).(notify.Decision)
	return d, args.Error(1)
}

func (m *Pinger) PingAuthor(ctx context.Context, channelID string, now time.Time) (notify.Decision, error) {
	args := m.Called(ctx, channelID, now)
	d, _ := args.Get(0).(notify.Decision)
	return d, args.Error(1)
}
