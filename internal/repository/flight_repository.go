package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bdist/aviacao-service/internal/model"
)

// FlightRepo reads the voo table.  Flights are never written by this
// service.
type FlightRepo struct {
	db *sqlx.DB
}

// NewFlightRepo constructs a FlightRepo with the given DB handle.
func NewFlightRepo(db *sqlx.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span several repositories.
func (r *FlightRepo) DB() *sqlx.DB { return r.db }

// GetByID returns a flight or ErrNotFound.
func (r *FlightRepo) GetByID(ctx context.Context, id int64) (*model.Flight, error) {
	const q = `SELECT id, partida, no_serie FROM voo WHERE id = $1`
	var f model.Flight
	if err := r.db.QueryRowxContext(ctx, q, id).Scan(&f.ID, &f.Departure, &f.Aircraft); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return &f, nil
}

// LockForPurchaseTx reads a flight and takes a row lock on it that is held
// until tx ends.  Every purchase for the same flight goes through this
// lock first, so seat selection for one flight is serialised across all
// service instances while purchases for other flights proceed in parallel.
func (r *FlightRepo) LockForPurchaseTx(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Flight, error) {
	const q = `SELECT id, partida, no_serie
               FROM voo
               WHERE id = $1
               FOR UPDATE`
	var f model.Flight
	if err := tx.QueryRowxContext(ctx, q, id).Scan(&f.ID, &f.Departure, &f.Aircraft); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock flight: %w", err)
	}
	return &f, nil
}
