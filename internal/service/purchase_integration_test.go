package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdist/aviacao-service/internal/database"
	"github.com/bdist/aviacao-service/internal/model"
	"github.com/bdist/aviacao-service/internal/repository"
)

var integrationSchema = []string{
	`DROP TABLE IF EXISTS bilhete, venda, assento, voo, aviao, depositor, account CASCADE`,
	`CREATE TABLE account (
        account_number VARCHAR(64) PRIMARY KEY,
        branch_name    VARCHAR(80) NOT NULL,
        balance        NUMERIC(16,4) NOT NULL)`,
	`CREATE TABLE depositor (
        customer_name  VARCHAR(80) NOT NULL,
        account_number VARCHAR(64) NOT NULL REFERENCES account,
        PRIMARY KEY (customer_name, account_number))`,
	`CREATE TABLE aviao (no_serie VARCHAR(80) PRIMARY KEY)`,
	`CREATE TABLE assento (
        lugar       VARCHAR(3) NOT NULL,
        no_serie    VARCHAR(80) NOT NULL REFERENCES aviao,
        prim_classe BOOLEAN NOT NULL,
        PRIMARY KEY (lugar, no_serie))`,
	`CREATE TABLE voo (
        id       SERIAL PRIMARY KEY,
        no_serie VARCHAR(80) NOT NULL REFERENCES aviao,
        partida  CHAR(3) NOT NULL)`,
	`CREATE TABLE venda (
        codigo_reserva SERIAL PRIMARY KEY,
        nif_cliente    CHAR(9) NOT NULL,
        balcao         CHAR(3),
        hora           TIMESTAMP NOT NULL)`,
	`CREATE TABLE bilhete (
        id              SERIAL PRIMARY KEY,
        voo_id          INTEGER NOT NULL REFERENCES voo,
        codigo_reserva  INTEGER NOT NULL REFERENCES venda,
        nome_passegeiro VARCHAR(80) NOT NULL,
        preco           NUMERIC(7,2) NOT NULL,
        prim_classe     BOOLEAN NOT NULL,
        lugar           VARCHAR(3),
        no_serie        VARCHAR(80),
        UNIQUE (voo_id, codigo_reserva, nome_passegeiro),
        UNIQUE (voo_id, no_serie, lugar),
        FOREIGN KEY (lugar, no_serie) REFERENCES assento)`,
	`INSERT INTO aviao VALUES ('CS-TUA')`,
	`INSERT INTO assento VALUES ('01A', 'CS-TUA', TRUE), ('01B', 'CS-TUA', TRUE), ('10A', 'CS-TUA', FALSE)`,
	`INSERT INTO voo (id, no_serie, partida) VALUES (1, 'CS-TUA', 'LIS')`,
}

// openIntegrationDB connects to the database named by POSTGRES_URL and
// rebuilds a small fleet: one aircraft with two first-class seats and one
// economy seat, flying flight 1.
func openIntegrationDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}
	db, err := database.Open(database.PoolConfig{URL: url, MaxConns: 8, MinConns: 2, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range integrationSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

func newIntegrationService(db *sqlx.DB) *PurchaseService {
	return NewPurchaseService(
		repository.NewFlightRepo(db),
		repository.NewSeatRepo(db),
		repository.NewSaleRepo(db),
		testPrices,
		nil,
	)
}

func soldTickets(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM bilhete WHERE voo_id = 1`))
	return n
}

func TestIntegrationPurchaseAssignsDistinctSeats(t *testing.T) {
	db := openIntegrationDB(t)
	svc := newIntegrationService(db)

	got, err := svc.PurchaseTickets(context.Background(), 1, "123456789", []model.Passenger{
		{Name: "Ana", FirstClass: true},
		{Name: "Rui", FirstClass: true},
		{Name: "Bruno"},
	})

	require.NoError(t, err)
	require.Len(t, got.Tickets, 3)
	assert.Equal(t, "01A", got.Tickets[0].Seat)
	assert.Equal(t, "01B", got.Tickets[1].Seat)
	assert.Equal(t, "10A", got.Tickets[2].Seat)

	sale, err := repository.NewSaleRepo(db).GetWithTickets(context.Background(), got.ReservationCode)
	require.NoError(t, err)
	assert.Equal(t, "LIS", sale.Counter)
	assert.Len(t, sale.Tickets, 3)
	assert.Equal(t, "1200", sale.Tickets[0].Price.String())
}

func TestIntegrationPurchaseIsAllOrNothing(t *testing.T) {
	db := openIntegrationDB(t)
	svc := newIntegrationService(db)

	_, err := svc.PurchaseTickets(context.Background(), 1, "123456789", []model.Passenger{
		{Name: "Bruno"},
		{Name: "Carla"},
	})

	var exhausted *SeatsExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.False(t, exhausted.FirstClass)
	assert.Zero(t, soldTickets(t, db))

	var sales int
	require.NoError(t, db.Get(&sales, `SELECT COUNT(*) FROM venda`))
	assert.Zero(t, sales)
}

func TestIntegrationConcurrentPurchasesNeverShareASeat(t *testing.T) {
	db := openIntegrationDB(t)
	svc := newIntegrationService(db)

	const buyers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exhausted int
	)
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.PurchaseTickets(context.Background(), 1, "123456789", []model.Passenger{{Name: "Bruno"}})
			mu.Lock()
			defer mu.Unlock()
			var soldOut *SeatsExhaustedError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &soldOut):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, buyers-1, exhausted)
	assert.Equal(t, 1, soldTickets(t, db))
}

func TestIntegrationUnknownFlightWritesNothing(t *testing.T) {
	db := openIntegrationDB(t)
	svc := newIntegrationService(db)

	_, err := svc.PurchaseTickets(context.Background(), 999, "123456789", []model.Passenger{{Name: "Ana"}})

	assert.ErrorIs(t, err, ErrFlightNotFound)
	var sales int
	require.NoError(t, db.Get(&sales, `SELECT COUNT(*) FROM venda`))
	assert.Zero(t, sales)
}
