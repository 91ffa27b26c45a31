// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseCompletedEvent is published after a ticket purchase commits.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type PurchaseCompletedEvent struct {
	ReservationCode int64        `json:"codigo_reserva"`
	FlightID        int64        `json:"voo_id"`
	TaxID           string       `json:"nif_cliente"`
	Counter         string       `json:"balcao"`
	Tickets         []TicketLine `json:"bilhetes"`
	Total           string       `json:"total"`
	CompletedAt     string       `json:"completed_at"`
}

// TicketLine is one issued ticket inside a PurchaseCompletedEvent.
type TicketLine struct {
	Passenger string `json:"nome_passageiro"`
	Class     string `json:"classe"`
	Seat      string `json:"lugar"`
	Price     string `json:"preco"`
}
