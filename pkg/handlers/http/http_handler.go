package http

import "github.com/gofiber/fiber/v2"

const ErrInvalidJsonPayload = "invalid json payload"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Ticket lifecycle
	OpenTicketHandler   Handler
	CloseTicketHandler  Handler
	ReopenTicketHandler Handler

	// Notifications
	PingSupportHandler Handler
	PingAuthorHandler  Handler

	// Membership
	AddMemberHandler    Handler
	RemoveMemberHandler Handler
}
