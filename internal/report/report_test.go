package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
	"telcoclean/internal/operations"
	"telcoclean/internal/shared/testutil"
	"telcoclean/pkg/contracts/domain"
)

func cleanSample(t *testing.T) *operations.OperationResponse {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	m, err := operations.NewCleaningManager(cleaning.DefaultRules(config.Default().Rules), nil, logger, nil, nil)
	require.NoError(t, err)
	resp, err := m.Execute(context.Background(), operations.OperationRequest{}, testutil.SampleDataset())
	require.NoError(t, err)
	return resp
}

func TestFromRun(t *testing.T) {
	resp := cleanSample(t)

	r, err := FromRun(resp)
	require.NoError(t, err)

	assert.Equal(t, resp.ID, r.RunID)
	assert.Equal(t, []TableCount{
		{domain.TableSubscribers, 4},
		{domain.TableUsage, 5},
		{domain.TableBilling, 4},
		{domain.TableTickets, 5},
		{domain.TableOutages, 3},
	}, r.Rows)
	assert.Equal(t, []FlagCount{
		{domain.TableUsage, "outlier_flag", 1},
		{domain.TableBilling, "data_quality_flag", 2},
		{domain.TableTickets, "data_quality_flag", 1},
		{domain.TableOutages, "outlier_flag", 1},
	}, r.Flags)
	assert.Equal(t, 5, r.FlagTotal())

	require.Len(t, r.Checklist, 5)
	assert.True(t, r.Complete())
	assert.Equal(t, "Duplicates removed", r.Checklist[0].Name)
	assert.Equal(t, "Impossible values fixed", r.Checklist[4].Name)
	assert.NotEmpty(t, r.Corrections)
	assert.Empty(t, r.Violations)
}

func TestFromRun_NoDataset(t *testing.T) {
	_, err := FromRun(nil)
	assert.Error(t, err)

	_, err = FromRun(&operations.OperationResponse{Status: operations.OperationStatusFailed})
	assert.Error(t, err)
}

func TestEmit_PartialChecklist(t *testing.T) {
	r := Emit(&domain.Dataset{}, []string{operations.StageNameDedup}, nil)

	assert.False(t, r.Complete())
	assert.True(t, r.Checklist[0].Done)
	assert.False(t, r.Checklist[1].Done)
	assert.Equal(t, []cleaning.Correction{}, r.Corrections)
	assert.Zero(t, r.FlagTotal())
}

func TestEmit_DoesNotMutate(t *testing.T) {
	ds := testutil.SampleDataset()
	before := testutil.SampleDataset()

	Emit(ds, Checklist, nil)
	NewProfile(ds, config.Default().Report)

	assert.Equal(t, before, ds)
}

func TestWriteText(t *testing.T) {
	resp := cleanSample(t)
	r, err := FromRun(resp)
	require.NoError(t, err)
	r.Profile = NewProfile(testutil.SampleDataset(), config.Default().Report)
	r.Violations = []string{"billing row 0: bill_amount -1 < 0"}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "DATA CLEANING SUMMARY REPORT")
	assert.Contains(t, out, "Final record counts:")
	assert.Regexp(t, `Usage Records:\s+5`, out)
	assert.Regexp(t, `billing\.data_quality_flag:\s+2`, out)
	assert.Contains(t, out, "[x] Impossible values fixed")
	assert.Contains(t, out, "Usage above 500 GB")
	assert.Contains(t, out, "! billing row 0")
}
