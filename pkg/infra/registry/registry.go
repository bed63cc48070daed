package registry

import (
	"sync"
	"time"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
)

// InMemory is the authoritative ticket registry: a primary map keyed by
// channel id plus a denormalized owner index used to reject duplicate opens.
// Both maps are mutated only under one mutex so every operation callers see
// is atomic. State is volatile; a restart empties the registry.
type InMemory struct {
	mu      sync.RWMutex
	tickets map[string]*ticket.Ticket
	owners  map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		tickets: make(map[string]*ticket.Ticket),
		owners:  make(map[string]string),
	}
}

func (r *InMemory) Create(ownerID, categoryID, channelID string, now time.Time) (*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, open := r.owners[ownerID]; open {
		return nil, ticket.ErrAlreadyOpen
	}

	t := ticket.NewTicket(channelID, ownerID, categoryID, now)
	r.tickets[channelID] = t
	r.owners[ownerID] = channelID

	return snapshot(t), nil
}

func (r *InMemory) Get(channelID string) (*ticket.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[channelID]
	if !ok {
		return nil, false
	}
	return snapshot(t), true
}

func (r *InMemory) ByOwner(ownerID string) (*ticket.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channelID, ok := r.owners[ownerID]
	if !ok {
		return nil, false
	}
	t, ok := r.tickets[channelID]
	if !ok {
		return nil, false
	}
	return snapshot(t), true
}

func (r *InMemory) Touch(channelID, actorID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[channelID]
	if !ok {
		return
	}
	t.LastInteractionAt = now
	t.LastInteractionBy = actorID
}

func (r *InMemory) MarkWarned(channelID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[channelID]
	if !ok {
		return
	}
	t.Warned = true
	t.WarnedAt = now
}

func (r *InMemory) RecordNotify(channelID string, kind ticket.NotifyKind, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[channelID]
	if !ok {
		return
	}
	switch kind {
	case ticket.NotifyAuthor:
		t.Cooldowns.Author = now
	default:
		t.Cooldowns.Support = now
	}
}

func (r *InMemory) Remove(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[channelID]
	if !ok {
		return false
	}
	delete(r.tickets, channelID)
	// Guard against the owner having opened a fresh ticket on another
	// channel between snapshot and removal.
	if current, ok := r.owners[t.OwnerID]; ok && current == channelID {
		delete(r.owners, t.OwnerID)
	}
	return true
}

func (r *InMemory) List() []*ticket.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ticket.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, snapshot(t))
	}
	return out
}

func (r *InMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tickets)
}

// snapshot copies the entry so callers never hold a pointer into the maps.
func snapshot(t *ticket.Ticket) *ticket.Ticket {
	c := *t
	return &c
}
