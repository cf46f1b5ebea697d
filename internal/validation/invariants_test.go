package validation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
	"telcoclean/internal/shared/testutil"
	"telcoclean/pkg/contracts/domain"
)

func cleanSample(t *testing.T) *domain.Dataset {
	t.Helper()
	stages, err := cleaning.NewStages(cleaning.DefaultRules(config.Default().Rules))
	require.NoError(t, err)
	return stages.Clean(testutil.SampleDataset(), cleaning.NewCorrections())
}

func rulesOf(violations []Violation) map[string]int {
	out := make(map[string]int)
	for _, v := range violations {
		out[string(v.Table)+"/"+v.Rule]++
	}
	return out
}

func TestDatasetValidator_CleanedSample(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewDatasetValidator(config.Default().Rules, logger)

	violations := v.Check(cleanSample(t))
	assert.Empty(t, Strings(violations))
	assert.False(t, handler.ContainsMessage("cleaned dataset violates invariants"))
}

func TestDatasetValidator_RawSample(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewDatasetValidator(config.Default().Rules, logger)

	violations := v.Check(testutil.SampleDataset())
	require.NotEmpty(t, violations)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "cleaned dataset violates invariants")

	got := rulesOf(violations)
	want := map[string]int{
		"subscribers/unique_key":          1,
		"usage_records/unique_key":        1,
		"billing/unique_key":              1,
		"network_outages/unique_key":      1,
		"usage_records/required":          2,
		"network_outages/required":        1,
		"billing/gte":                     1,
		"usage_records/subscriber_exists": 1,
		"usage_records/after_activation":  1,
		"usage_records/usage_cap":         1,
		"billing/flag_implies_condition":  4,
		"tickets/resolution_after_ticket": 1,
	}
	for rule, n := range want {
		assert.Equal(t, n, got[rule], rule)
	}
}

func TestDatasetValidator_StructLocation(t *testing.T) {
	ds := cleanSample(t)
	ds.Billing[1].BillAmount = -1
	ds.Billing[1].DataQualityFlag = false

	violations := NewDatasetValidator(config.Default().Rules, nil).Check(ds)

	var found bool
	for _, v := range violations {
		if v.Rule == "gte" {
			found = true
			assert.Equal(t, domain.TableBilling, v.Table)
			assert.Equal(t, 1, v.Row)
			assert.Contains(t, v.String(), "billing row 1: gte")
		}
	}
	assert.True(t, found)
}

func TestDatasetValidator_FlagConsistency(t *testing.T) {
	rules := config.Default().Rules

	tests := []struct {
		name   string
		mutate func(ds *domain.Dataset)
		rule   string
		table  domain.TableName
	}{
		{
			name: "usage flag without cap",
			mutate: func(ds *domain.Dataset) {
				ds.Usage[0].OutlierFlag = true
				ds.Usage[0].DataUsageGB = domain.Ptr(rules.UsageCapGB - 1)
			},
			rule:  "flag_implies_condition",
			table: domain.TableUsage,
		},
		{
			name: "usage above cap",
			mutate: func(ds *domain.Dataset) {
				ds.Usage[0].DataUsageGB = domain.Ptr(rules.UsageCapGB + 1)
			},
			rule:  "usage_cap",
			table: domain.TableUsage,
		},
		{
			name: "long outage not flagged",
			mutate: func(ds *domain.Dataset) {
				ds.Outages[0].DurationMins = domain.Ptr(rules.OutageFlagMinutes + 1)
				ds.Outages[0].OutlierFlag = false
			},
			rule:  "flag_implies_condition",
			table: domain.TableOutages,
		},
		{
			name: "resolved without date",
			mutate: func(ds *domain.Dataset) {
				ds.Tickets[0].Status = domain.TicketStatusResolved
				ds.Tickets[0].ResolutionDate = nil
			},
			rule:  "resolved_has_date",
			table: domain.TableTickets,
		},
		{
			name: "outage ends before start",
			mutate: func(ds *domain.Dataset) {
				ds.Outages[0].EndTime = ds.Outages[0].StartTime.Add(-1)
			},
			rule:  "end_after_start",
			table: domain.TableOutages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := cleanSample(t)
			tt.mutate(ds)

			violations := NewDatasetValidator(rules, nil).Check(ds)
			assert.Equal(t, 1, rulesOf(violations)[string(tt.table)+"/"+tt.rule], Strings(violations))
		})
	}
}
