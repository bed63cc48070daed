package inactivity

import (
	"context"
	"errors"
	"sync"
	"time"

	appticket "github.com/opendesk/ticketd/pkg/app/ticket"
	domain "github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const autoCloseReason = "Closed due to prolonged inactivity."

// Sweeper is the periodic inactivity process. Each tick it walks every open
// ticket and applies the two-stage escalation: warn after the inactivity
// threshold, auto-close after the grace period following the warning. Tickets
// are evaluated independently; archivals run in their own goroutines so one
// slow platform call never stalls the rest of the tick.
type Sweeper struct {
	logger   *logrus.Logger
	registry domain.Registry
	chat     chatplatform.Client
	archiver appticket.Archiver

	interval  time.Duration
	threshold time.Duration
	grace     time.Duration

	nowFn  func() time.Time
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweeper(
	logger *logrus.Logger,
	registry domain.Registry,
	chat chatplatform.Client,
	archiver appticket.Archiver,
	interval, threshold, grace time.Duration,
	nowFn func() time.Time,
) *Sweeper {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Sweeper{
		logger:    logger,
		registry:  registry,
		chat:      chat,
		archiver:  archiver,
		interval:  interval,
		threshold: threshold,
		grace:     grace,
		nowFn:     nowFn,
	}
}

// Start launches the ticker loop. Ticks stop when ctx is canceled or
// Shutdown is called; in-flight archivals are left to complete.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.WithField("interval", s.interval).Info("inactivity sweep started")
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops issuing ticks and waits for in-flight archivals.
func (s *Sweeper) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("inactivity sweep stopped")
}

// Sweep evaluates every open ticket once against the current clock.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.nowFn()

	for _, t := range s.registry.List() {
		if !t.Warned {
			// The warn transition always precedes auto-close: a ticket
			// warned this tick is not eligible for closure before the
			// next one.
			if now.Sub(t.LastInteractionAt) >= s.threshold {
				s.warn(ctx, t, now)
			}
			continue
		}

		if now.Sub(t.WarnedAt) >= s.grace {
			s.archive(ctx, t.ChannelID)
		}
	}
}

func (s *Sweeper) warn(ctx context.Context, t *domain.Ticket, now time.Time) {
	// Flag first: a partially failed notice must not refire every tick.
	s.registry.MarkWarned(t.ChannelID, now)

	var msg chatplatform.Outbound
	var branch string
	if t.OwnerSpokeLast() {
		// The owner is waiting on the team; no mention, no implied fault.
		branch = "team_busy"
		msg = chatplatform.Outbound{
			Embed: &chatplatform.Embed{
				Title: "🔔 Our team may be busy",
				Description: "A long interval has passed without a response. " +
					"Our staff might be under heavy load, but someone will help you soon!",
				Color: "#ffa500",
			},
		}
	} else {
		branch = "owner_absent"
		msg = chatplatform.Outbound{
			Content: chatplatform.Mention(t.OwnerID),
			Embed: &chatplatform.Embed{
				Title:       "🔔 Are you still there?",
				Description: "We need your response to continue with your request.",
				Color:       "#ffd100",
			},
		}
	}

	if err := s.chat.SendMessage(ctx, t.ChannelID, msg); err != nil {
		s.logger.WithError(err).WithField("channel_id", t.ChannelID).Error("failed to deliver inactivity warning")
	}

	prometheus.InactivityWarningsTotal.WithLabelValues(branch).Inc()
	s.logger.WithFields(logrus.Fields{
		"channel_id": t.ChannelID,
		"branch":     branch,
	}).Info("inactivity warning issued")
}

func (s *Sweeper) archive(ctx context.Context, channelID string) {
	s.wg.Add(1)
	// Detach from the sweep's cancellation so Shutdown lets the archival
	// finish instead of aborting its platform calls midway.
	archiveCtx := context.WithoutCancel(ctx)
	go func() {
		defer s.wg.Done()
		err := s.archiver.Archive(archiveCtx, channelID, autoCloseReason, prometheus.TriggerInactivity)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.WithError(err).WithField("channel_id", channelID).Error("auto-close archival failed")
		}
	}()
}
