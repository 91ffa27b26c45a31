package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPurchaseWritesOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "purchases.log")
	ev := PurchaseCompletedEvent{
		ReservationCode: 42,
		FlightID:        7,
		TaxID:           "123456789",
		Counter:         "LIS",
		Tickets: []TicketLine{
			{Passenger: "Ana", Class: "first", Seat: "01A", Price: "1200"},
			{Passenger: "Bruno", Class: "economy", Seat: "10A", Price: "400"},
		},
		Total:       "1600",
		CompletedAt: "2025-06-01T10:30:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, AppendPurchase(path, body))
	require.NoError(t, AppendPurchase(path, body))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "codigo_reserva=42")
	assert.Contains(t, lines[0], `balcao="LIS"`)
	assert.Contains(t, lines[0], "seats=[01A:Ana(first),10A:Bruno(economy)]")
}

func TestAppendPurchaseRejectsBadPayloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "purchases.log")

	assert.ErrorIs(t, AppendPurchase(path, []byte("not json")), ErrMalformedEvent)
	assert.ErrorIs(t, AppendPurchase(path, []byte(`{"voo_id": 7}`)), ErrMalformedEvent)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing should be written for rejected events")
}

func TestAppendPurchaseFileErrorsAreRetryable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	err := AppendPurchase(filepath.Join(blocker, "purchases.log"), []byte(`{"codigo_reserva": 42}`))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedEvent)
}
