package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bdist/aviacao-service/internal/model"
	"github.com/bdist/aviacao-service/internal/repository"
)

// SaleReader loads a committed sale with its tickets.
type SaleReader interface {
	GetWithTickets(ctx context.Context, code int64) (*model.Sale, error)
}

// SaleHandler serves GET /vendas/:codigo_reserva.
type SaleHandler struct {
	Sales SaleReader
}

// NewSaleHandler constructs a SaleHandler.
func NewSaleHandler(sales SaleReader) *SaleHandler {
	if sales == nil {
		panic("nil repository passed to NewSaleHandler")
	}
	return &SaleHandler{Sales: sales}
}

// Get returns a sale and its tickets by reservation code.
func (h *SaleHandler) Get(c echo.Context) error {
	code, ok := parseID(c, "codigo_reserva")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Código de reserva inválido."})
	}
	sale, err := h.Sales.GetWithTickets(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Venda não encontrada."})
		}
		return internalError(c, err, "get sale", purchaseInternal)
	}
	return c.JSON(http.StatusOK, sale)
}
