package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

// requestIDMiddleware tags every interaction with a correlation id so a
// ticket action can be traced across the handler, app, and platform layers.
type requestIDMiddleware struct {
	logger *logrus.Logger
}

func NewRequestIDMiddleware(logger *logrus.Logger) Middleware {
	return &requestIDMiddleware{logger: logger}
}

func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDHeader, id)
		c.Set(RequestIDHeader, id)

		m.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Method(),
			"path":       c.Path(),
		}).Debug("interaction received")

		return c.Next()
	}
}
