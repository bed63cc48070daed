package http

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/opendesk/ticketd/pkg/config"
	"github.com/opendesk/ticketd/pkg/handlers/http/request"
	"github.com/opendesk/ticketd/pkg/infra/chatplatform"
)

type reopenTicketHandler struct {
	logger *logrus.Logger
	cfg    *config.ChatConfig
	chat   chatplatform.Client
}

func NewReopenTicketHandler(
	logger *logrus.Logger,
	cfg *config.ChatConfig,
	chat chatplatform.Client,
) Handler {
	return &reopenTicketHandler{
		logger: logger,
		cfg:    cfg,
		chat:   chat,
	}
}

// Handle moves an archived ticket channel back to the active category. The
// ticket itself stays closed, this only restores the conversation surface.
func (s *reopenTicketHandler) Handle(c *fiber.Ctx) error {
	var req request.ChannelActionRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// Reopening is a staff action. Regular members get their own ticket back
	// by opening a new one.
	actor, err := s.chat.Member(c.Context(), req.ActorID)
	if err != nil {
		s.logger.WithError(err).WithField("actor_id", req.ActorID).Error("failed to resolve reopen actor")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to resolve actor"})
	}
	if !slices.Contains(actor.Roles, s.cfg.SupportRoleID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "support role required to reopen tickets"})
	}

	ch, err := s.chat.Channel(c.Context(), req.ChannelID)
	if err != nil {
		s.logger.WithError(err).WithField("channel_id", req.ChannelID).Error("failed to resolve channel")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
	}

	if ch.ParentID != s.cfg.ArchiveCategoryID {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "channel is not archived"})
	}

	if err := s.chat.MoveChannel(c.Context(), req.ChannelID, s.cfg.TicketCategoryID); err != nil {
		s.logger.WithError(err).WithField("channel_id", req.ChannelID).Error("failed to move channel")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to reopen channel"})
	}

	name := "reopened-" + strings.TrimPrefix(ch.Name, "closed-")
	if err := s.chat.RenameChannel(c.Context(), req.ChannelID, name); err != nil {
		s.logger.WithError(err).WithField("channel_id", req.ChannelID).Warn("failed to rename reopened channel")
	}

	s.logger.WithFields(logrus.Fields{
		"channel_id": req.ChannelID,
		"actor_id":   req.ActorID,
	}).Info("ticket channel reopened")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"channel_id": req.ChannelID,
		"name":       name,
	})
}
