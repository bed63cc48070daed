package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/handlers/http/request"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
)

type addMemberHandler struct {
	logger   *logrus.Logger
	registry ticket.Registry
	chat     chatplatform.Client
}

func NewAddMemberHandler(
	logger *logrus.Logger,
	registry ticket.Registry,
	chat chatplatform.Client,
) Handler {
	return &addMemberHandler{
		logger:   logger,
		registry: registry,
		chat:     chat,
	}
}

func (s *addMemberHandler) Handle(c *fiber.Ctx) error {
	var req request.MemberActionRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, ok := s.registry.Get(req.ChannelID); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel is not an open ticket"})
	}

	member, err := s.chat.Member(c.Context(), req.MemberID)
	if err != nil {
		s.logger.WithError(err).WithField("member_id", req.MemberID).Error("failed to resolve member")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
	}

	allow := []string{
		chatplatform.PermViewChannel,
		chatplatform.PermSendMessages,
		chatplatform.PermAttachFiles,
	}
	if err := s.chat.EditPermission(c.Context(), req.ChannelID, member.ID, allow, nil); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"channel_id": req.ChannelID,
			"member_id":  member.ID,
		}).Error("failed to grant channel access")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to grant channel access"})
	}

	s.registry.Touch(req.ChannelID, req.ActorID, time.Now())

	return c.SendStatus(fiber.StatusNoContent)
}
