package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	handlers "github.com/opendesk/ticketd/pkg/handlers/http"
	"github.com/opendesk/ticketd/pkg/middleware"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

type interactionRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewInteractionRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &interactionRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *interactionRouter) BuildRoutes(router *fiber.App) error {
	t := r.handlerTransport
	if t.OpenTicketHandler == nil ||
		t.CloseTicketHandler == nil ||
		t.ReopenTicketHandler == nil ||
		t.PingSupportHandler == nil ||
		t.PingAuthorHandler == nil ||
		t.AddMemberHandler == nil ||
		t.RemoveMemberHandler == nil {
		return ErrInvalidHandlerTransport
	}

	if r.middlewareTransport != nil {
		if m := r.middlewareTransport.PanicRecoverMiddleware; m != nil {
			router.Use(m.Middleware())
		}
		if m := r.middlewareTransport.RequestIDMiddleware; m != nil {
			router.Use(m.Middleware())
		}
	}

	interactions := router.Group("/interactions")
	{
		interactions.Post("/open", t.OpenTicketHandler.Handle)
		interactions.Post("/close", t.CloseTicketHandler.Handle)
		interactions.Post("/reopen", t.ReopenTicketHandler.Handle)

		ping := interactions.Group("/ping")
		{
			ping.Post("/support", t.PingSupportHandler.Handle)
			ping.Post("/author", t.PingAuthorHandler.Handle)
		}

		members := interactions.Group("/members")
		{
			members.Post("/add", t.AddMemberHandler.Handle)
			members.Post("/remove", t.RemoveMemberHandler.Handle)
		}
	}

	return nil
}
