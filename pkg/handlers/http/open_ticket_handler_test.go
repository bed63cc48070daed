package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ticketMocks "github.com/opendesk/ticketd/pkg/app/ticket/mocks"
	domain "github.com/opendesk/ticketd/pkg/domain/ticket"
	"github.com/opendesk/ticketd/pkg/infra/registry"
)

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}) (*fiber.App, int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if data, err := io.ReadAll(resp.Body); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}
	return app, resp.StatusCode, decoded
}

func TestOpenTicketHandler_Success(t *testing.T) {
	logger := logrus.New()
	creator := new(ticketMocks.Creator)
	reg := registry.NewInMemory()

	opened := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	creator.On("Open", mock.Anything, "owner-1", "support").Return(&domain.Ticket{
		ChannelID:  "chan-1",
		OwnerID:    "owner-1",
		Protocol:   "1741944413000-0042",
		CategoryID: "support",
		OpenedAt:   opened,
	}, nil)

	handler := NewOpenTicketHandler(logger, creator, reg)
	app := fiber.New()
	app.Post("/interactions/open", handler.Handle)

	_, status, body := postJSON(t, app, "/interactions/open", map[string]interface{}{
		"owner_id":    "owner-1",
		"category_id": "support",
	})

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "chan-1", body["channel_id"])
	assert.Equal(t, "1741944413000-0042", body["protocol"])
	assert.Equal(t, "2025-03-14T09:26:53Z", body["opened_at"])
}

func TestOpenTicketHandler_ConflictReturnsExistingChannel(t *testing.T) {
	logger := logrus.New()
	creator := new(ticketMocks.Creator)
	reg := registry.NewInMemory()
	_, err := reg.Create("owner-1", "support", "chan-existing", time.Now())
	require.NoError(t, err)

	creator.On("Open", mock.Anything, "owner-1", "support").Return(nil, domain.ErrAlreadyOpen)

	handler := NewOpenTicketHandler(logger, creator, reg)
	app := fiber.New()
	app.Post("/interactions/open", handler.Handle)

	_, status, body := postJSON(t, app, "/interactions/open", map[string]interface{}{
		"owner_id":    "owner-1",
		"category_id": "support",
	})

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "chan-existing", body["channel_id"])
}

func TestOpenTicketHandler_MissingFields(t *testing.T) {
	handler := NewOpenTicketHandler(logrus.New(), new(ticketMocks.Creator), registry.NewInMemory())
	app := fiber.New()
	app.Post("/interactions/open", handler.Handle)

	_, status, _ := postJSON(t, app, "/interactions/open", map[string]interface{}{
		"owner_id": "owner-1",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestOpenTicketHandler_ProvisioningFailure(t *testing.T) {
	creator := new(ticketMocks.Creator)
	creator.On("Open", mock.Anything, "owner-1", "support").Return(nil, assert.AnError)

	handler := NewOpenTicketHandler(logrus.New(), creator, registry.NewInMemory())
	app := fiber.New()
	app.Post("/interactions/open", handler.Handle)

	_, status, _ := postJSON(t, app, "/interactions/open", map[string]interface{}{
		"owner_id":    "owner-1",
		"category_id": "support",
	})
	assert.Equal(t, fiber.StatusBadGateway, status)
}
