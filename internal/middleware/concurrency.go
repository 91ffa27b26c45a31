package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/bdist/aviacao-service/internal/logging"
)

// MaxInFlight bounds how many requests are handled at once.  The bound is
// normally the size of the connection pool, so a request that gets a slot
// can also get a connection.  Requests wait for a slot until their context
// expires and then receive 503.
func MaxInFlight(n int) echo.MiddlewareFunc {
	if n < 1 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if err := sem.Acquire(ctx, 1); err != nil {
				logging.FromContext(ctx).WithError(err).Warn("no worker available")
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"message": "Service busy, try again later.",
					"status":  "error",
				})
			}
			defer sem.Release(1)
			return next(c)
		}
	}
}
