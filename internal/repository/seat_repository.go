package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bdist/aviacao-service/internal/model"
)

// SeatRepo answers seat availability questions against assento and the
// tickets already issued in bilhete.
type SeatRepo struct {
	db *sqlx.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sqlx.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// NextFreeTx returns the lowest seat label of the requested class on the
// flight's aircraft that no ticket of that flight references.  The query
// runs inside tx so it sees the tickets tx inserted earlier.  ErrNotFound
// means the class is sold out.
//
// NOT EXISTS is used instead of NOT IN so a NULL lugar in bilhete cannot
// turn the whole predicate unknown and hide every seat.
func (r *SeatRepo) NextFreeTx(ctx context.Context, tx *sqlx.Tx, flight model.Flight, firstClass bool) (string, error) {
	const q = `SELECT a.lugar
               FROM assento a
               WHERE a.no_serie = $1
                 AND a.prim_classe = $2
                 AND NOT EXISTS (
                     SELECT 1
                     FROM bilhete b
                     WHERE b.voo_id = $3
                       AND b.no_serie = a.no_serie
                       AND b.lugar = a.lugar
                 )
               ORDER BY a.lugar
               LIMIT 1`
	var label string
	if err := tx.QueryRowxContext(ctx, q, flight.Aircraft, firstClass, flight.ID).Scan(&label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select free seat: %w", err)
	}
	return label, nil
}

// CountFree returns how many seats of each class are still unsold on a
// flight.  The answer is a snapshot; a concurrent purchase may take seats
// right after it is read.
func (r *SeatRepo) CountFree(ctx context.Context, flight model.Flight) (model.SeatAvailability, error) {
	const q = `SELECT
                   COUNT(*) FILTER (WHERE a.prim_classe),
                   COUNT(*) FILTER (WHERE NOT a.prim_classe)
               FROM assento a
               WHERE a.no_serie = $1
                 AND NOT EXISTS (
                     SELECT 1
                     FROM bilhete b
                     WHERE b.voo_id = $2
                       AND b.no_serie = a.no_serie
                       AND b.lugar = a.lugar
                 )`
	out := model.SeatAvailability{FlightID: flight.ID}
	if err := r.db.QueryRowxContext(ctx, q, flight.Aircraft, flight.ID).Scan(&out.FirstClass, &out.Economy); err != nil {
		return model.SeatAvailability{}, fmt.Errorf("count free seats: %w", err)
	}
	return out, nil
}
