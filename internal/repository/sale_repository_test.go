package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdist/aviacao-service/internal/model"
)

func TestSaleRepoGetWithTickets(t *testing.T) {
	db, mock := newMockDB(t)
	soldAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM venda").WithArgs(int64(42)).WillReturnRows(
		sqlmock.NewRows([]string{"codigo_reserva", "nif_cliente", "balcao", "hora"}).
			AddRow(int64(42), "123456789", "LIS", soldAt),
	)
	mock.ExpectQuery("FROM bilhete").WithArgs(int64(42)).WillReturnRows(
		sqlmock.NewRows([]string{"codigo_reserva", "nome_passegeiro", "prim_classe", "voo_id", "no_serie", "lugar", "preco"}).
			AddRow(int64(42), "Ana", true, int64(7), "CS-TUA", "01A", "1200.00").
			AddRow(int64(42), "Bruno", false, int64(7), "CS-TUA", "10A", "400.00"),
	)

	sale, err := NewSaleRepo(db).GetWithTickets(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "LIS", sale.Counter)
	assert.Equal(t, soldAt, sale.CreatedAt)
	require.Len(t, sale.Tickets, 2)
	assert.Equal(t, "01A", sale.Tickets[0].Seat)
	assert.Equal(t, "1200", sale.Tickets[0].Price.String())
	assert.False(t, sale.Tickets[1].FirstClass)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepoGetWithTicketsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM venda").WithArgs(int64(1)).WillReturnRows(
		sqlmock.NewRows([]string{"codigo_reserva", "nif_cliente", "balcao", "hora"}),
	)

	_, err := NewSaleRepo(db).GetWithTickets(context.Background(), 1)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeatRepoNextFreeTxSoldOut(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM assento").WithArgs("CS-TUA", true, int64(7)).WillReturnRows(
		sqlmock.NewRows([]string{"lugar"}),
	)
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = NewSeatRepo(db).NextFreeTx(context.Background(), tx, model.Flight{ID: 7, Aircraft: "CS-TUA"}, true)

	assert.ErrorIs(t, err, ErrNotFound)
}
