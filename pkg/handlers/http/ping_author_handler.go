package http

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/opendesk/ticketd/pkg/app/notify"
	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/handlers/http/request"
)

type pingAuthorHandler struct {
	logger   *logrus.Logger
	registry ticket.Registry
	pinger   notify.Pinger
}

func NewPingAuthorHandler(
	logger *logrus.Logger,
	registry ticket.Registry,
	pinger notify.Pinger,
) Handler {
	return &pingAuthorHandler{
		logger:   logger,
		registry: registry,
		pinger:   pinger,
	}
}

func (s *pingAuthorHandler) Handle(c *fiber.Ctx) error {
	var req request.ChannelActionRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	now := time.Now()
	s.registry.Touch(req.ChannelID, req.ActorID, now)

	decision, err := s.pinger.PingAuthor(c.Context(), req.ChannelID, now)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel is not an open ticket"})
		}
		s.logger.WithError(err).WithField("channel_id", req.ChannelID).Error("failed to notify ticket author")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to deliver notification"})
	}

	if !decision.Allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "notification is on cooldown",
			"retry_after": int(math.Ceil(decision.Remaining.Seconds())),
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
