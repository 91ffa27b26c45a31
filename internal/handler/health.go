package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bdist/aviacao-service/internal/logging"
)

// Ping is the liveness endpoint used by load balancers and monitoring.  It
// never touches the database and is exempt from rate limiting.
func Ping(c echo.Context) error {
	logging.FromContext(c.Request().Context()).Debug("ping!")
	return c.JSON(http.StatusOK, echo.Map{"message": "pong!", "status": "success"})
}
