package mocks

import (
	"context"

	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) CreateChannel(ctx context.Context, spec chatplatform.ChannelSpec) (*chatplatform.Channel, error) {
	args := m.Called(ctx, spec)
	ch, _ := args.Get(0).(*chatplatform.Channel)
	return ch, args.Error(1)
}

func (m *Client) Channel(ctx context.Context, channelID string) (*chatplatform.Channel, error) {
	args := m.Called(ctx, channelID)
	ch, _ := args.Get(0).(*chatplatform.Channel)
	return ch, args.Error(1)
}

func (m *Client) SendMessage(ctx context.Context, channelID string, msg chatplatform.Outbound) error {
	args := m.Called(ctx, channelID, msg)
	return args.Error(0)
}

func (m *Client) FetchHistory(ctx context.Context, channelID string) ([]chatplatform.Message, error) {
	args := m.Called(ctx, channelID)
	msgs, _ := args.Get(0).([]chatplatform.Message)
	return msgs, args.Error(1)
}

func (m *Client) MoveChannel(ctx context.Context, channelID, parentID string) error {
	args := m.Called(ctx, channelID, parentID)
	return args.Error(0)
}

func (m *Client) RenameChannel(ctx context.Context, channelID, name string) error {
	args := m.Called(ctx, channelID, name)
	return args.Error(0)
}

func (m *Client) EditPermission(ctx context.Context, channelID, memberID string, allow, deny []string) error {
	args := m.Called(ctx, channelID, memberID, allow, deny)
	return args.Error(0)
}

func (m *Client) DeletePermission(ctx context.Context, channelID, memberID string) error {
	args := m.Called(ctx, channelID, memberID)
	return args.Error(0)
}

func (m *Client) Member(ctx context.Context, memberID string) (*chatplatform.Member, error) {
	args := m.Called(ctx, memberID)
	member, _ := args.Get(0).(*chatplatform.Member)
	return member, args.Error(1)
}

func (m *Client) GuildName(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
