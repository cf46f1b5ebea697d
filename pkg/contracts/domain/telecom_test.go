package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetClone(t *testing.T) {
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	ds := &Dataset{
		Subscribers: []Subscriber{{SubscriberID: "SUB000001", ActivationDate: day, ChurnDate: Ptr(day.AddDate(0, 1, 0))}},
		Usage:       []UsageRecord{{UsageID: "USG0000001", SubscriberID: "SUB000001", DataUsageGB: Ptr(12.5)}},
		Billing:     []BillingRecord{{BillID: "BILL0000001", PaymentDate: Ptr(day)}},
		Tickets:     []Ticket{{TicketID: "TKT0000001", ResolutionDate: Ptr(day)}},
		Outages:     []OutageRecord{{OutageID: "OUT00001", DurationMins: Ptr(90.0)}},
	}

	clone := ds.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, ds, clone)

	*clone.Usage[0].DataUsageGB = 99
	*clone.Outages[0].DurationMins = 1
	*clone.Tickets[0].ResolutionDate = day.AddDate(1, 0, 0)
	clone.Billing[0].DataQualityFlag = true
	clone.Subscribers = append(clone.Subscribers, Subscriber{SubscriberID: "SUB000002"})

	assert.Equal(t, 12.5, *ds.Usage[0].DataUsageGB)
	assert.Equal(t, 90.0, *ds.Outages[0].DurationMins)
	assert.Equal(t, day, *ds.Tickets[0].ResolutionDate)
	assert.False(t, ds.Billing[0].DataQualityFlag)
	assert.Len(t, ds.Subscribers, 1)
}

func TestDatasetCloneNil(t *testing.T) {
	var ds *Dataset
	assert.Nil(t, ds.Clone())
}

func TestDatasetRowCounts(t *testing.T) {
	ds := &Dataset{
		Usage:   make([]UsageRecord, 3),
		Tickets: make([]Ticket, 2),
	}

	counts := ds.RowCounts()
	assert.Equal(t, 0, counts[TableSubscribers])
	assert.Equal(t, 3, counts[TableUsage])
	assert.Equal(t, 2, counts[TableTickets])
	assert.Len(t, counts, len(Tables()))
}

func TestSchemas(t *testing.T) {
	for _, table := range Tables() {
		s, ok := Schema(table)
		require.True(t, ok, table)
		assert.Equal(t, table, s.Name)
		assert.Contains(t, s.Columns, s.Key)
		assert.Equal(t, string(table)+"_clean.csv", s.CleanFileName())

		header := s.Header()
		assert.Len(t, header, len(s.Columns)+len(s.FlagColumns))
		if len(s.FlagColumns) > 0 {
			assert.Equal(t, s.FlagColumns[len(s.FlagColumns)-1], header[len(header)-1])
		}
	}

	_, ok := Schema("invoices")
	assert.False(t, ok)
	assert.Panics(t, func() { MustSchema("invoices") })
}
