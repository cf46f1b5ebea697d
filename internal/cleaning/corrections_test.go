package cleaning

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrections(t *testing.T) {
	c := NewCorrections()
	c.Add("billing.bill_id.duplicates_removed", 1)
	c.Add("usage_records.data_usage_gb.imputed", 2)
	c.Add("billing.bill_id.duplicates_removed", 3)
	c.Add("tickets.ticket_id.duplicates_removed", 0)

	assert.Equal(t, 4, c.Count("billing.bill_id.duplicates_removed"))
	assert.Equal(t, 6, c.Total())
	assert.Equal(t, []Correction{
		{Rule: "billing.bill_id.duplicates_removed", Count: 4},
		{Rule: "usage_records.data_usage_gb.imputed", Count: 2},
		{Rule: "tickets.ticket_id.duplicates_removed", Count: 0},
	}, c.List())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"rule":"billing.bill_id.duplicates_removed","count":4},
		{"rule":"usage_records.data_usage_gb.imputed","count":2},
		{"rule":"tickets.ticket_id.duplicates_removed","count":0}
	]`, string(data))
}

func TestCorrections_Nil(t *testing.T) {
	var c *Corrections
	c.Add("x", 1)
	assert.Zero(t, c.Count("x"))
	assert.Zero(t, c.Total())
	assert.Nil(t, c.List())

	data, err := json.Marshal(NewCorrections())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
