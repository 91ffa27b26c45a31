package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bdist/aviacao-service/internal/model"
	"github.com/bdist/aviacao-service/internal/repository"
)

// FlightReader looks flights up by id.
type FlightReader interface {
	GetByID(ctx context.Context, id int64) (*model.Flight, error)
}

// SeatCounter counts unsold seats of a flight.
type SeatCounter interface {
	CountFree(ctx context.Context, flight model.Flight) (model.SeatAvailability, error)
}

// FlightHandler serves read-only flight information.
type FlightHandler struct {
	Flights FlightReader
	Seats   SeatCounter
}

// NewFlightHandler constructs a FlightHandler.
func NewFlightHandler(flights FlightReader, seats SeatCounter) *FlightHandler {
	if flights == nil || seats == nil {
		panic("nil repository passed to NewFlightHandler")
	}
	return &FlightHandler{Flights: flights, Seats: seats}
}

// Availability handles GET /voos/:voo/assentos and reports how many seats
// of each class are still free.  The numbers are a snapshot and do not
// reserve anything.
func (h *FlightHandler) Availability(c echo.Context) error {
	flightID, ok := parseID(c, "voo")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Identificador de voo inválido."})
	}
	ctx := c.Request().Context()
	flight, err := h.Flights.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Voo não encontrado."})
		}
		return internalError(c, err, "get flight", purchaseInternal)
	}
	free, err := h.Seats.CountFree(ctx, *flight)
	if err != nil {
		return internalError(c, err, "count free seats", purchaseInternal)
	}
	return c.JSON(http.StatusOK, free)
}
