package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdist/aviacao-service/internal/logging"
)

// RequestLogger attaches a logrus entry tagged with the request id to the
// request context and logs one line per finished request.  The id is the
// one set by echo's RequestID middleware when present, a fresh UUID
// otherwise.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = req.Header.Get(echo.HeaderXRequestID)
			}
			if id == "" {
				id = uuid.NewString()
				c.Response().Header().Set(echo.HeaderXRequestID, id)
			}

			entry := logrus.WithField("request_id", id)
			c.SetRequest(req.WithContext(logging.ToContext(req.Context(), entry)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := logrus.Fields{
				"method":  req.Method,
				"path":    c.Path(),
				"uri":     req.RequestURI,
				"status":  status,
				"latency": time.Since(start).String(),
				"ip":      c.RealIP(),
			}
			switch {
			case status >= 500:
				entry.WithFields(fields).Error("request")
			case status >= 400:
				entry.WithFields(fields).Warn("request")
			default:
				entry.WithFields(fields).Info("request")
			}
			return nil
		}
	}
}
