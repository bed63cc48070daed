package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Decision is the cooldown gate's verdict. Remaining is meaningful only when
// Allowed is false and carries the wait time for user-facing messaging.
type Decision struct {
	Allowed   bool
	Remaining time.Duration
}

//go:generate mockery --name=Gate --dir=. --output=./mocks --filename=notify_gate_mock.go --case=underscore --with-expecter
type Gate interface {
	// Try decides whether a notification of kind may fire now. Pure: it
	// never mutates state.
	Try(t *ticket.Ticket, kind ticket.NotifyKind, now time.Time) Decision

	// Record stamps the cooldown slot after the notification side effect
	// succeeded. Ordering is the caller's contract: check, act, record.
	Record(channelID string, kind ticket.NotifyKind, now time.Time)

	// Fire runs the full check-act-record sequence for one notification,
	// serialized per (channel, kind) so two concurrent attempts cannot both
	// observe an open window. The registry lock is never held across send.
	Fire(ctx context.Context, channelID string, kind ticket.NotifyKind, now time.Time, send func(ctx context.Context) error) (Decision, error)
}

type gate struct {
	logger   *logrus.Logger
	registry ticket.Registry
	window   time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGate(logger *logrus.Logger, registry ticket.Registry, window time.Duration) Gate {
	return &gate{
		logger:   logger,
		registry: registry,
		window:   window,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (g *gate) Try(t *ticket.Ticket, kind ticket.NotifyKind, now time.Time) Decision {
	last := t.Cooldowns.Last(kind)
	if last.IsZero() {
		return Decision{Allowed: true}
	}
	elapsed := now.Sub(last)
	if elapsed >= g.window {
		return Decision{Allowed: true}
	}
	return Decision{Remaining: g.window - elapsed}
}

func (g *gate) Record(channelID string, kind ticket.NotifyKind, now time.Time) {
	g.registry.RecordNotify(channelID, kind, now)
}

func (g *gate) Fire(
	ctx context.Context,
	channelID string,
	kind ticket.NotifyKind,
	now time.Time,
	send func(ctx context.Context) error,
) (Decision, error) {
	lock := g.lockFor(channelID, kind)
	lock.Lock()
	defer lock.Unlock()

	t, ok := g.registry.Get(channelID)
	if !ok {
		g.release(channelID)
		return Decision{}, ticket.ErrNotFound
	}

	decision := g.Try(t, kind, now)
	if !decision.Allowed {
		prometheus.NotificationsTotal.WithLabelValues(string(kind), "denied").Inc()
		return decision, nil
	}

	if err := send(ctx); err != nil {
		// Window not burned: a failed delivery must not count as a ping.
		g.logger.WithError(err).WithFields(logrus.Fields{
			"channel_id": channelID,
			"kind":       kind,
		}).Error("notification delivery failed")
		return decision, err
	}

	g.Record(channelID, kind, now)
	prometheus.NotificationsTotal.WithLabelValues(string(kind), "allowed").Inc()
	return decision, nil
}

func (g *gate) lockFor(channelID string, kind ticket.NotifyKind) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := channelID + "/" + string(kind)
	lock, ok := g.locks[key]
	if !ok {
		g.evictStale()
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	return lock
}

// evictStale drops lock entries whose channel left the registry without a
// Fire ever observing the miss, e.g. a pinged ticket that was later archived.
// Caller holds g.mu. Evicting a held mutex is safe: the holder keeps its
// reference, and a fresh acquirer hits the registry miss before sending.
func (g *gate) evictStale() {
	for key := range g.locks {
		channelID, _, ok := strings.Cut(key, "/")
		if !ok {
			continue
		}
		if _, live := g.registry.Get(channelID); !live {
			delete(g.locks, key)
		}
	}
}

// release drops the keyed locks of a channel that is no longer a ticket.
func (g *gate) release(channelID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, channelID+"/"+string(ticket.NotifySupport))
	delete(g.locks, channelID+"/"+string(ticket.NotifyAuthor))
}
