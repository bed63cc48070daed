package response

import (
	"time"

	"github.com/opendesk/ticketd/pkg/domain/ticket"
)

type TicketResponse struct {
	ChannelID  string `json:"channel_id"`
	OwnerID    string `json:"owner_id"`
	Protocol   string `json:"protocol"`
	CategoryID string `json:"category_id"`
	OpenedAt   string `json:"opened_at"`
}

func NewTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ChannelID:  t.ChannelID,
		OwnerID:    t.OwnerID,
		Protocol:   t.Protocol,
		CategoryID: t.CategoryID,
		OpenedAt:   t.OpenedAt.Format(time.RFC3339),
	}
}
