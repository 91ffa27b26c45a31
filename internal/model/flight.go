package model

// Flight is the part of a voo row the purchase workflow needs.  Flights are
// managed outside this service and are read-only here.
//
// Fields:
//  ID        – voo.id.
//  Departure – voo.partida, the departure airport; it doubles as the
//              counter (balcao) that issues the sale.
//  Aircraft  – voo.no_serie, serial number of the aircraft flying it.
type Flight struct {
	ID        int64  `db:"id"`
	Departure string `db:"partida"`
	Aircraft  string `db:"no_serie"`
}

// Seat is a row of assento: a seat label on one aircraft configuration and
// its class.
type Seat struct {
	Aircraft   string `db:"no_serie"`
	Label      string `db:"lugar"`
	FirstClass bool   `db:"prim_classe"`
}

// SeatAvailability counts the seats of a flight that no ticket references yet.
type SeatAvailability struct {
	FlightID   int64 `json:"voo"`
	FirstClass int   `json:"primeira_classe"`
	Economy    int   `json:"economica"`
}
