package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opendesk/ticketd/pkg/config"
	domain "github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

var ErrUnknownCategory = errors.New("unknown ticket category")

//go:generate mockery --name=Creator --dir=. --output=./mocks --filename=ticket_creator_mock.go --case=underscore --with-expecter
type Creator interface {
	Open(ctx context.Context, ownerID, categoryID string) (*domain.Ticket, error)
}

type creator struct {
	logger   *logrus.Logger
	registry domain.Registry
	chat     chatplatform.Client
	cfg      *config.Config
}

func NewCreator(
	logger *logrus.Logger,
	registry domain.Registry,
	chat chatplatform.Client,
	cfg *config.Config,
) Creator {
	return &creator{
		logger:   logger,
		registry: registry,
		chat:     chat,
		cfg:      cfg,
	}
}

func (c *creator) Open(ctx context.Context, ownerID, categoryID string) (*domain.Ticket, error) {
	category, ok := c.cfg.CategoryByID(categoryID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}

	// Fast-path rejection before provisioning a channel. The registry's
	// atomic check-and-insert below remains the authority.
	if _, open := c.registry.ByOwner(ownerID); open {
		return nil, domain.ErrAlreadyOpen
	}

	member, err := c.chat.Member(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket owner: %w", err)
	}

	channel, err := c.chat.CreateChannel(ctx, chatplatform.ChannelSpec{
		Name:     fmt.Sprintf("%s・%s", category.Emoji, member.Username),
		ParentID: c.cfg.Chat.TicketCategoryID,
		Overwrites: []chatplatform.PermissionOverwrite{
			{
				MemberID: c.cfg.Chat.GuildID,
				Deny:     []string{chatplatform.PermViewChannel},
			},
			{
				MemberID: ownerID,
				Allow: []string{
					chatplatform.PermViewChannel,
					chatplatform.PermSendMessages,
					chatplatform.PermAttachFiles,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to provision ticket channel: %w", err)
	}

	t, err := c.registry.Create(ownerID, category.ID, channel.ID, time.Now())
	if err != nil {
		// Lost a near-simultaneous race after the channel already exists;
		// the orphaned channel needs a manual cleanup.
		c.logger.WithFields(logrus.Fields{
			"owner_id":   ownerID,
			"channel_id": channel.ID,
		}).WithError(err).Warn("ticket registration rejected after channel provisioning")
		return nil, err
	}

	c.sendWelcome(ctx, t, category)

	prometheus.TicketsOpenedTotal.WithLabelValues(category.ID).Inc()
	prometheus.OpenTickets.Set(float64(c.registry.Len()))

	c.logger.WithFields(logrus.Fields{
		"owner_id":   ownerID,
		"channel_id": t.ChannelID,
		"protocol":   t.Protocol,
		"category":   category.ID,
	}).Info("ticket opened")

	return t, nil
}

// sendWelcome posts the greeting with the tracking code. Best-effort: a
// delivery failure must not undo a ticket that is already registered.
func (c *creator) sendWelcome(ctx context.Context, t *domain.Ticket, category config.Category) {
	color := category.Color
	if color == "" {
		color = "#09ff00"
	}
	err := c.chat.SendMessage(ctx, t.ChannelID, chatplatform.Outbound{
		Content: chatplatform.Mention(t.OwnerID),
		Embed: &chatplatform.Embed{
			Title: ":wave: Welcome to the Support System!",
			Description: fmt.Sprintf(
				"Hello, %s! 👋\n\n"+
					"🔖 **Ticket / Protocol:** `%s`\n"+
					"🗂️ **Category:** %s - %s\n\n"+
					"📜 Please provide **as many details as possible** to speed up assistance.\n\n"+
					"⏱️ **Estimated Response Time:** up to 15 minutes during business hours.",
				chatplatform.Mention(t.OwnerID), t.Protocol, category.Emoji, category.Label,
			),
			Color: color,
		},
	})
	if err != nil {
		c.logger.WithError(err).WithField("channel_id", t.ChannelID).Error("failed to send ticket welcome message")
	}
}
