package ticket

import "time"

//go:generate mockery --name=Registry --dir=. --output=./mocks --filename=ticket_registry_mock.go --case=underscore --with-expecter
type Registry interface {
	// Create registers a new ticket for ownerID hosted on channelID. The
	// owner-index check and the insert are a single atomic step; a second
	// create for the same owner fails with ErrAlreadyOpen.
	Create(ownerID, categoryID, channelID string, now time.Time) (*Ticket, error)

	// Get returns a snapshot of the ticket hosted on channelID.
	Get(channelID string) (*Ticket, bool)

	// ByOwner returns a snapshot of the owner's open ticket, if any.
	ByOwner(ownerID string) (*Ticket, bool)

	// Touch records an interaction. No-op when the channel is not a ticket.
	Touch(channelID, actorID string, now time.Time)

	// MarkWarned sets the inactivity-warning flag and its timestamp.
	MarkWarned(channelID string, now time.Time)

	// RecordNotify stamps the cooldown slot for kind.
	RecordNotify(channelID string, kind NotifyKind, now time.Time)

	// Remove deletes the ticket from both the primary map and the owner
	// index. Returns false when the entry was already gone.
	Remove(channelID string) bool

	// List returns snapshots of every open ticket.
	List() []*Ticket

	// Len reports the number of open tickets.
	Len() int
}
