package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

// HeaderUser names the caller recorded in the backup audit log.
const HeaderUser = "X-User"

// NewRequestID assigns every request an X-Request-ID, keeping one supplied
// by the client, and stores it in the request context for logging.
func NewRequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		},
	})
}

// RequestID returns the ID assigned by NewRequestID, or "".
func RequestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return logger.RequestIDFromContext(c.Request().Context())
}
