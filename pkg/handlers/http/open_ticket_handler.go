package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appticket "github.com/opendesk/ticketd/pkg/app/ticket"
	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/handlers/http/request"
	"github.com/opendesk/ticketd/pkg/handlers/http/response"
)

type openTicketHandler struct {
	logger   *logrus.Logger
	creator  appticket.Creator
	registry ticket.Registry
}

func NewOpenTicketHandler(
	logger *logrus.Logger,
	creator appticket.Creator,
	registry ticket.Registry,
) Handler {
	return &openTicketHandler{
		logger:   logger,
		creator:  creator,
		registry: registry,
	}
}

func (s *openTicketHandler) Handle(c *fiber.Ctx) error {
	var req request.OpenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	t, err := s.creator.Open(c.Context(), req.OwnerID, req.CategoryID)
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrAlreadyOpen):
			existing, _ := s.registry.ByOwner(req.OwnerID)
			body := fiber.Map{"error": "owner already has an open ticket"}
			if existing != nil {
				body["channel_id"] = existing.ChannelID
			}
			return c.Status(fiber.StatusConflict).JSON(body)
		case errors.Is(err, appticket.ErrUnknownCategory):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			s.logger.WithError(err).Error("failed to open ticket")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to provision ticket channel"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(response.NewTicketResponse(t))
}
