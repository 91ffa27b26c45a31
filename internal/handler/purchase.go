package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bdist/aviacao-service/internal/model"
	"github.com/bdist/aviacao-service/internal/service"
)

// Purchaser runs the ticket purchase workflow.
type Purchaser interface {
	PurchaseTickets(ctx context.Context, flightID int64, taxID string, passengers []model.Passenger) (*model.Purchase, error)
}

// PurchaseHandler serves POST /compra/:voo/.
type PurchaseHandler struct {
	Purchases Purchaser
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(p Purchaser) *PurchaseHandler {
	if p == nil {
		panic("nil purchaser passed to NewPurchaseHandler")
	}
	return &PurchaseHandler{Purchases: p}
}

var purchaseInternal = echo.Map{"error": "Erro interno do servidor."}

type purchaseRequest struct {
	TaxID   json.RawMessage    `json:"nif"`
	Tickets *[]model.Passenger `json:"bilhetes"`
}

// Buy handles POST /compra/:voo/.  The body is
//
//	{"nif": "123456789", "bilhetes": [["Ana", true], ["Bruno", false]]}
//
// and every passenger gets one seat of the requested class, or nobody gets
// anything.  It answers 201 with the reservation code, 404 when the flight
// does not exist and 400 when a class runs out of seats.
func (h *PurchaseHandler) Buy(c echo.Context) error {
	flightID, ok := parseID(c, "voo")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Identificador de voo inválido."})
	}
	var body purchaseRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo do pedido inválido."})
	}
	taxID, ok := normalizeTaxID(body.TaxID)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "O campo nif é obrigatório."})
	}
	if body.Tickets == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "O campo bilhetes é obrigatório."})
	}
	passengers := *body.Tickets

	purchase, err := h.Purchases.PurchaseTickets(c.Request().Context(), flightID, taxID, passengers)
	if err != nil {
		var exhausted *service.SeatsExhaustedError
		switch {
		case errors.Is(err, service.ErrFlightNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Voo não encontrado."})
		case errors.As(err, &exhausted):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": exhaustedMessage(exhausted.FirstClass)})
		default:
			return internalError(c, err, "purchase tickets", purchaseInternal)
		}
	}

	bought := purchase.Passengers
	if bought == nil {
		bought = []model.Passenger{}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"mensagem":           "Compra realizada com sucesso.",
		"codigo_reserva":     purchase.ReservationCode,
		"bilhetes_comprados": bought,
	})
}

func exhaustedMessage(firstClass bool) string {
	if firstClass {
		return "Sem assentos de primeira classe disponíveis para o voo."
	}
	return "Sem assentos económicos disponíveis para o voo."
}

// normalizeTaxID accepts the nif either as a JSON string or as a JSON
// number and returns it as a trimmed string.
func normalizeTaxID(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", false
	}
	return n.String(), true
}
