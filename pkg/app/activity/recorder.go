package activity

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	appticket "github.com/opendesk/ticketd/pkg/app/ticket"
	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
)

const memberLeftReason = "Ticket author left the server."

// Recorder translates feed events into lifecycle actions: messages inside a
// ticket channel refresh its interaction clock, and a departing member takes
// their ticket with them.
type Recorder struct {
	logger   *logrus.Logger
	registry ticket.Registry
	archiver appticket.Archiver
}

func NewRecorder(logger *logrus.Logger, registry ticket.Registry, archiver appticket.Archiver) *Recorder {
	return &Recorder{
		logger:   logger,
		registry: registry,
		archiver: archiver,
	}
}

func (r *Recorder) MessageCreated(_ context.Context, channelID, authorID string, bot bool, at time.Time) {
	if bot {
		return
	}
	r.registry.Touch(channelID, authorID, at)
}

func (r *Recorder) MemberLeft(ctx context.Context, memberID string) {
	t, ok := r.registry.ByOwner(memberID)
	if !ok {
		return
	}

	r.logger.WithFields(logrus.Fields{
		"member_id":  memberID,
		"channel_id": t.ChannelID,
	}).Info("ticket owner left, archiving")

	if err := r.archiver.Archive(ctx, t.ChannelID, memberLeftReason, prometheus.TriggerMemberLeft); err != nil && !errors.Is(err, ticket.ErrNotFound) {
		r.logger.WithError(err).WithField("channel_id", t.ChannelID).Error("failed to archive ticket of departed member")
	}
}
