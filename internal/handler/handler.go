// Package handler contains the HTTP handlers of the service.  Handlers
// parse and validate path, query and body parameters into typed values
// before any database call, and map the errors of the layers below onto
// status codes.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bdist/aviacao-service/internal/logging"
)

const maxAccountNumberLen = 64

// accountError writes the {message, status} error body used by the
// account endpoints.
func accountError(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"message": msg, "status": "error"})
}

// internalError logs err with the request's log entry and answers with a
// generic 500.  Storage error text never reaches the client.
func internalError(c echo.Context, err error, what string, body echo.Map) error {
	logging.FromContext(c.Request().Context()).
		WithError(err).
		WithField("path", c.Path()).
		Error(what)
	return c.JSON(http.StatusInternalServerError, body)
}

// parseID reads a positive base-10 int64 path parameter.
func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseAccountNumber reads and trims the account_number path parameter.
func parseAccountNumber(c echo.Context) (string, bool) {
	number := strings.TrimSpace(c.Param("account_number"))
	if number == "" || len(number) > maxAccountNumberLen {
		return "", false
	}
	return number, true
}
