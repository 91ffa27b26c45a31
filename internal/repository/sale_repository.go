package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bdist/aviacao-service/internal/model"
)

// SaleRepo writes and reads sales (venda) and the tickets (bilhete) issued
// under them.  A sale and its tickets are only ever created together inside
// one purchase transaction and are never modified afterwards.
type SaleRepo struct {
	db *sqlx.DB
}

// NewSaleRepo returns a new SaleRepo bound to the given database.
func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

// CreateTx inserts a new sale within the scope of an existing transaction.
// The reservation code and timestamp are generated by the database and
// written back into sale.  The caller must commit or rollback the
// transaction.
func (r *SaleRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, sale *model.Sale) error {
	const q = `INSERT INTO venda (nif_cliente, balcao, hora)
               VALUES ($1, $2, NOW())
               RETURNING codigo_reserva, hora`
	if err := tx.QueryRowxContext(ctx, q, sale.TaxID, sale.Counter).Scan(&sale.ReservationCode, &sale.CreatedAt); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateTicketTx inserts one ticket within the provided transaction.
func (r *SaleRepo) CreateTicketTx(ctx context.Context, tx *sqlx.Tx, t model.Ticket) error {
	const q = `INSERT INTO bilhete (codigo_reserva, nome_passegeiro, prim_classe, voo_id, no_serie, lugar, preco)
               VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, q,
		t.ReservationCode, t.PassengerName, t.FirstClass, t.FlightID, t.Aircraft, t.Seat, t.Price,
	); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetWithTickets returns a sale and all of its tickets, ordered as they
// were issued.  It returns ErrNotFound for an unknown reservation code.
func (r *SaleRepo) GetWithTickets(ctx context.Context, code int64) (*model.Sale, error) {
	const q = `SELECT codigo_reserva, nif_cliente, balcao, hora
               FROM venda
               WHERE codigo_reserva = $1`
	var sale model.Sale
	if err := r.db.GetContext(ctx, &sale, q, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	const ticketsQ = `SELECT codigo_reserva, nome_passegeiro, prim_classe, voo_id, no_serie, lugar, preco
                      FROM bilhete
                      WHERE codigo_reserva = $1
                      ORDER BY id`
	sale.Tickets = make([]model.Ticket, 0)
	if err := r.db.SelectContext(ctx, &sale.Tickets, ticketsQ, code); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return &sale, nil
}
