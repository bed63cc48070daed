package ticket

import (
	"time"
)

// NotifyKind selects which cooldown slot a notification consumes.
type NotifyKind string

const (
	NotifySupport NotifyKind = "support"
	NotifyAuthor  NotifyKind = "author"
)

// Cooldowns records the last time each notification kind fired for a ticket.
type Cooldowns struct {
	Support time.Time `json:"support"`
	Author  time.Time `json:"author"`
}

func (c Cooldowns) Last(kind NotifyKind) time.Time {
	if kind == NotifyAuthor {
		return c.Author
	}
	return c.Support
}

// Ticket is one open support session, keyed by its hosting channel.
type Ticket struct {
	ChannelID         string    `json:"channel_id"`
	OwnerID           string    `json:"owner_id"`
	Protocol          string    `json:"protocol"`
	CategoryID        string    `json:"category_id"`
	OpenedAt          time.Time `json:"opened_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
	LastInteractionBy string    `json:"last_interaction_by"`
	Warned            bool      `json:"warned"`
	WarnedAt          time.Time `json:"warned_at"`
	Cooldowns         Cooldowns `json:"cooldowns"`
}

func NewTicket(channelID, ownerID, categoryID string, now time.Time) *Ticket {
	return &Ticket{
		ChannelID:         channelID,
		OwnerID:           ownerID,
		Protocol:          GenerateProtocol(now),
		CategoryID:        categoryID,
		OpenedAt:          now,
		LastInteractionAt: now,
		LastInteractionBy: ownerID,
	}
}

// OwnerSpokeLast reports whether the ticket author was the last to interact.
func (t *Ticket) OwnerSpokeLast() bool {
	return t.LastInteractionBy == t.OwnerID
}

// Duration returns how long the ticket has been open. A zero OpenedAt yields
// zero rather than a bogus multi-decade duration.
func (t *Ticket) Duration(now time.Time) time.Duration {
	if t.OpenedAt.IsZero() {
		return 0
	}
	return now.Sub(t.OpenedAt)
}
