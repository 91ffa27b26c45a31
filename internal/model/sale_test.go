package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassengerDecodesPairs(t *testing.T) {
	var got []Passenger
	err := json.Unmarshal([]byte(`[["Ana", true], ["Bruno", false], ["Ana", true]]`), &got)
	require.NoError(t, err)

	assert.Equal(t, []Passenger{
		{Name: "Ana", FirstClass: true},
		{Name: "Bruno", FirstClass: false},
		{Name: "Ana", FirstClass: true},
	}, got)

	out, err := json.Marshal(got[:2])
	require.NoError(t, err)
	assert.JSONEq(t, `[["Ana", true], ["Bruno", false]]`, string(out))
}

func TestPassengerRejectsMalformedPairs(t *testing.T) {
	for name, body := range map[string]string{
		"object":       `{"name": "Ana"}`,
		"single":       `["Ana"]`,
		"triple":       `["Ana", true, 1]`,
		"numeric name": `[12, true]`,
		"string class": `["Ana", "yes"]`,
		"null name":    `[null, true]`,
		"null class":   `["Ana", null]`,
		"null pair":    `[null, null]`,
		"empty name":   `["", true]`,
		"blank name":   `["   ", false]`,
		"null ticket":  `null`,
	} {
		t.Run(name, func(t *testing.T) {
			var p Passenger
			assert.Error(t, json.Unmarshal([]byte(body), &p))
		})
	}
}

func TestPassengerListRejectsNullEntries(t *testing.T) {
	var got []Passenger
	assert.Error(t, json.Unmarshal([]byte(`[["Ana", true], [null, null]]`), &got))
	assert.Error(t, json.Unmarshal([]byte(`[null]`), &got))
}

func TestPassengerTrimsName(t *testing.T) {
	var p Passenger
	require.NoError(t, json.Unmarshal([]byte(`["  Ana ", true]`), &p))
	assert.Equal(t, Passenger{Name: "Ana", FirstClass: true}, p)
}
