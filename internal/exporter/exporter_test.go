package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
	apperrors "telcoclean/internal/errors"
	"telcoclean/internal/loader"
	"telcoclean/internal/report"
	"telcoclean/internal/shared/testutil"
	"telcoclean/pkg/contracts/domain"
)

func cleanedSample(t *testing.T) (*domain.Dataset, *report.Report) {
	t.Helper()
	stages, err := cleaning.NewStages(cleaning.DefaultRules(config.Default().Rules))
	require.NoError(t, err)
	corrections := cleaning.NewCorrections()
	ds := stages.Clean(testutil.SampleDataset(), corrections)
	return ds, report.Emit(ds, report.Checklist, corrections)
}

func TestExporter_Persist(t *testing.T) {
	ds, rep := cleanedSample(t)
	dir := filepath.Join(t.TempDir(), "clean")
	logger, _ := testutil.NewTestLogger(t)

	written, err := New(dir, config.Default().Export, logger).Persist(context.Background(), ds, rep)
	require.NoError(t, err)
	require.Len(t, written, 5)

	for _, table := range domain.Tables() {
		schema := domain.MustSchema(table)
		records := readCSV(t, filepath.Join(dir, schema.CleanFileName()))
		require.NotEmpty(t, records)
		assert.Equal(t, schema.Header(), records[0], string(table))
		assert.Len(t, records[1:], ds.RowCounts()[table], string(table))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestExporter_FlagColumnsLast(t *testing.T) {
	ds, _ := cleanedSample(t)

	header, rows, err := TableRecords(ds, domain.TableBilling)
	require.NoError(t, err)
	assert.Equal(t, "data_quality_flag", header[len(header)-1])
	for _, row := range rows {
		assert.Len(t, row, len(header))
	}

	_, _, err = TableRecords(ds, domain.TableName("unknown"))
	assert.Error(t, err)
}

// Persisted files read back through the loader reproduce the dataset,
// sub-second timestamps included.
func TestExporter_RoundTrip(t *testing.T) {
	ds, rep := cleanedSample(t)
	ds.Outages[0].StartTime = ds.Outages[0].StartTime.Add(123456 * time.Microsecond)
	out := t.TempDir()
	cfg := config.Default().Export
	cfg.BOMPrefix = true

	_, err := New(out, cfg, nil).Persist(context.Background(), ds, rep)
	require.NoError(t, err)

	in := t.TempDir()
	for _, table := range domain.Tables() {
		schema := domain.MustSchema(table)
		data, err := os.ReadFile(filepath.Join(out, schema.CleanFileName()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(in, schema.FileName()), data, 0644))
	}

	loaded, err := loader.New(nil, nil).LoadDirectory(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, ds, loaded)
}

func TestExporter_Workbook(t *testing.T) {
	ds, rep := cleanedSample(t)
	dir := t.TempDir()
	cfg := config.Default().Export
	cfg.Workbook = true

	written, err := New(dir, cfg, nil).Persist(context.Background(), ds, rep)
	require.NoError(t, err)
	require.Len(t, written, 6)

	path := filepath.Join(dir, cfg.WorkbookName)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"subscribers", "usage_records", "billing", "tickets", "network_outages", SummarySheet,
	}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"section", "item", "value"}, rows[0])
	assert.Contains(t, rows, []string{"flags", "billing.data_quality_flag", "2"})

	loaded, err := loader.New(nil, nil).LoadWorkbook(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ds.RowCounts(), loaded.RowCounts())
}

func TestExporter_StorageError(t *testing.T) {
	ds, rep := cleanedSample(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := New(filepath.Join(blocker, "out"), config.Default().Export, nil).Persist(context.Background(), ds, rep)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestExporter_CancelledLeavesNothing(t *testing.T) {
	ds, rep := cleanedSample(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(dir, config.Default().Export, nil).Persist(ctx, ds, rep)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
