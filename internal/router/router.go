// Package router registers the HTTP routes of the service.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bdist/aviacao-service/internal/handler"
	"github.com/bdist/aviacao-service/internal/metrics"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Accounts *handler.AccountHandler
	Purchase *handler.PurchaseHandler
	Flights  *handler.FlightHandler
	Sales    *handler.SaleHandler
}

// RegisterRoutes maps every endpoint onto e.  limit is applied to each
// route except /ping and /metrics, which monitoring must always reach.
func RegisterRoutes(e *echo.Echo, h Handlers, limit echo.MiddlewareFunc) {
	e.GET("/ping", handler.Ping)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.GET("/", h.Accounts.List, limit)
	e.GET("/accounts", h.Accounts.List, limit)
	e.GET("/accounts/:account_number/update", h.Accounts.Get, limit)
	e.Match([]string{http.MethodPut, http.MethodPost}, "/accounts/:account_number/update", h.Accounts.UpdateBalance, limit)
	e.Match([]string{http.MethodDelete, http.MethodPost}, "/accounts/:account_number/delete", h.Accounts.Delete, limit)

	e.POST("/compra/:voo/", h.Purchase.Buy, limit)
	e.GET("/voos/:voo/assentos", h.Flights.Availability, limit)
	e.GET("/vendas/:codigo_reserva", h.Sales.Get, limit)
}
