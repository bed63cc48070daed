package mocks

import (
	"time"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/stretchr/testify/mock"
)

type Registry struct {
	mock.Mock
}

func (m *Registry) Create(ownerID, categoryID, channelID string, now time.Time) (*ticket.Ticket, error) {
	args := m.Called(ownerID, categoryID, channelID, now)
	t, _ := args.Get(0).(*ticket.Ticket)
	return t, args.Error(1)
}

func (m *Registry) Get(channelID string) (*ticket.Ticket, bool) {
	args := m.Called(channelID)
	t, _ := args.Get(0).(*ticket.Ticket)
	return t, args.Bool(1)
}

func (m *Registry) ByOwner(ownerID string) (*ticket.Ticket, bool) {
	args := m.Called(ownerID)
	t, _ := args.Get(0).(*ticket.Ticket)
	return t, args.Bool(1)
}

func (m *Registry) Touch(channelID, actorID string, now time.Time) {
	m.Called(channelID, actorID, now)
}

func (m *Registry) MarkWarned(channelID string, now time.Time) {
	m.Called(channelID, now)
}

func (m *Registry) RecordNotify(channelID string, kind ticket.NotifyKind, now time.Time) {
	m.Called(channelID, kind, now)
}

func (m *Registry) Remove(channelID string) bool {
	args := m.Called(channelID)
	return args.Bool(0)
}

func (m *Registry) List() []*ticket.Ticket {
	args := m.Called()
	list, _ := args.Get(0).([]*ticket.Ticket)
	return list
}

func (m *Registry) Len() int {
	args := m.Called()
	return args.Int(0)
}
