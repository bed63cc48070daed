package mocks

import (
	"context"

	domain "github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/stretchr/testify/mock"
)

type Creator struct {
	mock.Mock
}

func (m *Creator) Open(ctx context.Context, ownerID, categoryID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ownerID, categoryID)
	t, _ := args.Get(0).(*domain.Ticket)
	return t, args.Error(1)
}

type Archiver struct {
	mock.Mock
}

func (m *Archiver) Archive(ctx context.Context, channelID, reason, trigger string) error {
	args := m.Called(ctx, channelID, reason, trigger)
	return args.Error(0)
}
