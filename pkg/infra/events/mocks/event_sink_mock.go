package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Sink struct {
	mock.Mock
}

func (m *Sink) MessageCreated(ctx context.Context, channelID, authorID string, bot bool, at time.Time) {
	m.Called(ctx, channelID, authorID, bot, at)
}

func (m *Sink) MemberLeft(ctx context.Context, memberID string) {
	m.Called(ctx, memberID)
}
