package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appticket "github.com/opendesk/ticketd/pkg/app/ticket"
	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/handlers/http/request"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
	"github.com/opendesk/ticketd/pkg/infra/prometheus"
)

type closeTicketHandler struct {
	logger   *logrus.Logger
	registry ticket.Registry
	archiver appticket.Archiver
	chat     chatplatform.Client
}

func NewCloseTicketHandler(
	logger *logrus.Logger,
	registry ticket.Registry,
	archiver appticket.Archiver,
	chat chatplatform.Client,
) Handler {
	return &closeTicketHandler{
		logger:   logger,
		registry: registry,
		archiver: archiver,
		chat:     chat,
	}
}

func (s *closeTicketHandler) Handle(c *fiber.Ctx) error {
	var req request.ChannelActionRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.registry.Touch(req.ChannelID, req.ActorID, time.Now())

	actor := req.ActorID
	if m, err := s.chat.Member(c.Context(), req.ActorID); err == nil && m.Username != "" {
		actor = m.Username
	}
	reason := fmt.Sprintf("Manually closed by %s.", actor)

	if err := s.archiver.Archive(c.Context(), req.ChannelID, reason, prometheus.TriggerManual); err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel is not an open ticket"})
		}
		s.logger.WithError(err).WithField("channel_id", req.ChannelID).Error("failed to archive ticket")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to archive ticket"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
