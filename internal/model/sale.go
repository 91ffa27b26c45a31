package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a row of venda.  One sale groups every ticket bought by a single
// purchase request.
type Sale struct {
	ReservationCode int64     `db:"codigo_reserva" json:"codigo_reserva"`
	TaxID           string    `db:"nif_cliente" json:"nif_cliente"`
	Counter         string    `db:"balcao" json:"balcao"`
	CreatedAt       time.Time `db:"hora" json:"hora"`
	Tickets         []Ticket  `db:"-" json:"bilhetes"`
}

// Ticket is a row of bilhete: one passenger on one seat of one flight.
type Ticket struct {
	ReservationCode int64           `db:"codigo_reserva" json:"-"`
	PassengerName   string          `db:"nome_passegeiro" json:"nome_passageiro"`
	FirstClass      bool            `db:"prim_classe" json:"prim_classe"`
	FlightID        int64           `db:"voo_id" json:"voo_id"`
	Aircraft        string          `db:"no_serie" json:"no_serie"`
	Seat            string          `db:"lugar" json:"lugar"`
	Price           decimal.Decimal `db:"preco" json:"preco"`
}

// Passenger is one entry of a purchase request.  On the wire it is the
// two-element array [name, isFirstClass].
type Passenger struct {
	Name       string
	FirstClass bool
}

// UnmarshalJSON decodes the [name, isFirstClass] pair.
func (p *Passenger) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.New("ticket must be a [name, isFirstClass] pair")
	}
	if len(raw) != 2 {
		return fmt.Errorf("ticket must have exactly 2 elements, got %d", len(raw))
	}
	// null decodes into a string or bool without error, so it is refused
	// before decoding
	if isNull(raw[0]) {
		return errors.New("passenger name must be a string")
	}
	if isNull(raw[1]) {
		return errors.New("class flag must be a boolean")
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return errors.New("passenger name must be a string")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("passenger name must not be empty")
	}
	var firstClass bool
	if err := json.Unmarshal(raw[1], &firstClass); err != nil {
		return errors.New("class flag must be a boolean")
	}
	p.Name, p.FirstClass = name, firstClass
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// MarshalJSON encodes the passenger back as [name, isFirstClass].
func (p Passenger) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Name, p.FirstClass})
}

// ClassName is the human name of a seat class, used in logs and events.
func ClassName(firstClass bool) string {
	if firstClass {
		return "first"
	}
	return "economy"
}

// Purchase is the committed outcome of a ticket purchase.
type Purchase struct {
	ReservationCode int64
	FlightID        int64
	TaxID           string
	Counter         string
	Passengers      []Passenger
	Tickets         []Ticket
}
