package ticket

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
	"github.com/opendesk/ticketd/pkg/infra/transcript"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:generate mockery --name=Archiver --dir=. --output=./mocks --filename=ticket_archiver_mock.go --case=underscore --with-expecter
type Archiver interface {
	// Archive finalizes one ticket: transcript, summary delivery, channel
	// relocation, registry removal. Returns ticket.ErrNotFound when the
	// channel is not a ticket or another archival already claimed it.
	Archive(ctx context.Context, channelID, reason, trigger string) error
}

type archiver struct {
	logger   *logrus.Logger
	registry domain.Registry
	chat     chatplatform.Client
	renderer *transcript.Renderer

	archiveCategoryID string
	logChannelID      string

	// inflight is the claim set making concurrent archivals of the same
	// channel single-winner: the registry entry is only removed at the end,
	// so presence in the registry alone cannot arbitrate.
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewArchiver(
	logger *logrus.Logger,
	registry domain.Registry,
	chat chatplatform.Client,
	renderer *transcript.Renderer,
	archiveCategoryID string,
	logChannelID string,
) Archiver {
	return &archiver{
		logger:            logger,
		registry:          registry,
		chat:              chat,
		renderer:          renderer,
		archiveCategoryID: archiveCategoryID,
		logChannelID:      logChannelID,
		inflight:          make(map[string]struct{}),
	}
}

func (a *archiver) Archive(ctx context.Context, channelID, reason, trigger string) error {
	t, err := a.claim(channelID)
	if err != nil {
		return err
	}

	// Registry removal is unconditional: whatever happens to the external
	// steps, no zombie entry may survive archival.
	defer func() {
		a.registry.Remove(channelID)
		a.mu.Lock()
		delete(a.inflight, channelID)
		a.mu.Unlock()

		prometheus.TicketsArchivedTotal.WithLabelValues(trigger).Inc()
		prometheus.OpenTickets.Set(float64(a.registry.Len()))
	}()

	log := a.logger.WithFields(logrus.Fields{
		"channel_id": channelID,
		"protocol":   t.Protocol,
		"reason":     reason,
	})

	channelName := channelID
	if channel, err := a.chat.Channel(ctx, channelID); err != nil {
		log.WithError(err).Warn("failed to resolve channel, using id in summary")
	} else {
		channelName = channel.Name
	}

	attachment := a.captureTranscript(ctx, channelID, channelName, log)

	summary := a.buildSummary(t, channelName, reason, time.Now())

	a.deliverSummary(ctx, channelID, summary, attachment, log)

	// Relocate, rename, revoke: three independent external mutations.
	// Fire-and-continue, none blocks the others.
	if err := a.chat.MoveChannel(ctx, channelID, a.archiveCategoryID); err != nil {
		log.WithError(err).Error("failed to move channel to archive category")
	}
	if err := a.chat.RenameChannel(ctx, channelID, "closed-"+channelName); err != nil {
		log.WithError(err).Error("failed to rename archived channel")
	}
	if err := a.chat.EditPermission(ctx, channelID, t.OwnerID, nil, []string{
		chatplatform.PermViewChannel,
		chatplatform.PermSendMessages,
	}); err != nil {
		log.WithError(err).Error("failed to revoke ticket owner access")
	}

	log.Info("ticket archived")
	return nil
}

// claim atomically marks the channel as being archived. The second of two
// concurrent callers observes either the claim or the missing registry entry
// and backs off with ErrNotFound.
func (a *archiver) claim(channelID string) (*domain.Ticket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, busy := a.inflight[channelID]; busy {
		return nil, domain.ErrNotFound
	}
	t, ok := a.registry.Get(channelID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.inflight[channelID] = struct{}{}
	return t, nil
}

func (a *archiver) captureTranscript(
	ctx context.Context,
	channelID, channelName string,
	log *logrus.Entry,
) *chatplatform.Attachment {
	history, err := a.chat.FetchHistory(ctx, channelID)
	if err != nil {
		log.WithError(err).Error("transcript capture failed, archiving without transcript")
		return nil
	}

	guildName, err := a.chat.GuildName(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to resolve guild name for transcript footer")
	}

	return a.renderer.Render(channelName, guildName, history)
}

func (a *archiver) buildSummary(t *domain.Ticket, channelName, reason string, now time.Time) *chatplatform.Embed {
	durationMin := int(t.Duration(now).Minutes())
	return &chatplatform.Embed{
		Title:       "🛑 Ticket Archived",
		Description: fmt.Sprintf("Reason: **%s**", reason),
		Color:       "#ff0000",
		Fields: []chatplatform.EmbedField{
			{Name: "Ticket Author:", Value: chatplatform.Mention(t.OwnerID), Inline: true},
			{Name: "Protocol:", Value: fmt.Sprintf("`%s`", t.Protocol), Inline: true},
			{Name: "Ticket Duration:", Value: fmt.Sprintf("%d min", durationMin)},
			{Name: "Channel:", Value: fmt.Sprintf("`%s`", channelName), Inline: true},
		},
	}
}

// deliverSummary sends the closing record to the ticket channel and, when
// configured, the log channel. Deliveries run in parallel; failures are
// logged and never escalate.
func (a *archiver) deliverSummary(
	ctx context.Context,
	channelID string,
	summary *chatplatform.Embed,
	attachment *chatplatform.Attachment,
	log *logrus.Entry,
) {
	msg := chatplatform.Outbound{Embed: summary, Attachment: attachment}

	targets := []string{channelID}
	if a.logChannelID != "" {
		targets = append(targets, a.logChannelID)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			if err := a.chat.SendMessage(gctx, target, msg); err != nil {
				log.WithError(err).WithField("target", target).Error("failed to deliver archival summary")
			}
			return nil
		})
	}
	_ = g.Wait()
}
