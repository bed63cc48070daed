package ticket

import "errors"

var (
	// ErrAlreadyOpen is returned when an owner tries to open a second ticket
	// while one is still active.
	ErrAlreadyOpen = errors.New("owner already has an open ticket")

	// ErrNotFound is returned for operations on a channel that is not (or is
	// no longer) registered as a ticket.
	ErrNotFound = errors.New("ticket not found")
)
