package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/handlers/http/request"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
)

type removeMemberHandler struct {
	logger   *logrus.Logger
	registry ticket.Registry
	chat     chatplatform.Client
}

func NewRemoveMemberHandler(
	logger *logrus.Logger,
	registry ticket.Registry,
	chat chatplatform.Client,
) Handler {
	return &removeMemberHandler{
		logger:   logger,
		registry: registry,
		chat:     chat,
	}
}

func (s *removeMemberHandler) Handle(c *fiber.Ctx) error {
	var req request.MemberActionRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	t, ok := s.registry.Get(req.ChannelID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel is not an open ticket"})
	}

	// Pulling the owner out of their own ticket would strand it.
	if req.MemberID == t.OwnerID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot remove the ticket owner"})
	}

	if err := s.chat.DeletePermission(c.Context(), req.ChannelID, req.MemberID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"channel_id": req.ChannelID,
			"member_id":  req.MemberID,
		}).Error("failed to revoke channel access")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to revoke channel access"})
	}

	s.registry.Touch(req.ChannelID, req.ActorID, time.Now())

	return c.SendStatus(fiber.StatusNoContent)
}
