package notify

import (
	"context"
	"time"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Pinger --dir=. --output=./mocks --filename=pinger_mock.go --case=underscore --with-expecter
type Pinger interface {
	PingSupport(ctx context.Context, channelID string, now time.Time) (Decision, error)
	PingAuthor(ctx context.Context, channelID string, now time.Time) (Decision, error)
}

// pinger posts the manual "call support" / "call author" notices, each behind
// the cooldown gate.
type pinger struct {
	logger   *logrus.Logger
	registry ticket.Registry
	gate     Gate
	chat     chatplatform.Client
}

func NewPinger(
	logger *logrus.Logger,
	registry ticket.Registry,
	gate Gate,
	chat chatplatform.Client,
) Pinger {
	return &pinger{
		logger:   logger,
		registry: registry,
		gate:     gate,
		chat:     chat,
	}
}

func (p *pinger) PingSupport(ctx context.Context, channelID string, now time.Time) (Decision, error) {
	return p.gate.Fire(ctx, channelID, ticket.NotifySupport, now, func(ctx context.Context) error {
		return p.chat.SendMessage(ctx, channelID, chatplatform.Outbound{
			Embed: &chatplatform.Embed{
				Title:       "👀 Support Team Notified",
				Description: "Please wait. Our team will arrive soon to assist you.",
				Color:       "#FFFF00",
			},
		})
	})
}

func (p *pinger) PingAuthor(ctx context.Context, channelID string, now time.Time) (Decision, error) {
	t, ok := p.registry.Get(channelID)
	if !ok {
		return Decision{}, ticket.ErrNotFound
	}
	return p.gate.Fire(ctx, channelID, ticket.NotifyAuthor, now, func(ctx context.Context) error {
		return p.chat.SendMessage(ctx, channelID, chatplatform.Outbound{
			Content: chatplatform.Mention(t.OwnerID),
			Embed: &chatplatform.Embed{
				Title:       "📢 Calling the Author",
				Description: "We hope they respond soon so we can proceed.",
				Color:       "#FFFF00",
			},
		})
	})
}
