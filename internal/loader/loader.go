// Package loader reads the five source tables into a domain.Dataset.
//
// Tables come either from a directory of CSV files named after the tables
// (subscribers.csv, usage_records.csv, ...) or from a single .xlsx workbook
// with one sheet per table. Any missing source, missing column or
// unparseable cell aborts the load; nothing is cleaned from partial input.
package loader

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"telcoclean/internal/config"
	apperrors "telcoclean/internal/errors"
	"telcoclean/internal/infrastructure"
	"telcoclean/internal/validation"
	"telcoclean/pkg/contracts/domain"
)

// Loader reads source tables.
type Loader struct {
	logger  *slog.Logger
	files   *validation.FileValidator
	metrics *infrastructure.CleaningMetrics
}

// New creates a Loader. metrics may be nil.
func New(logger *slog.Logger, metrics *infrastructure.CleaningMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "loader")
	return &Loader{
		logger:  logger,
		files:   validation.NewFileValidator(logger),
		metrics: metrics,
	}
}

// Load reads from paths.Workbook when set, otherwise from paths.InputDir.
func (l *Loader) Load(ctx context.Context, paths config.PathsConfig) (*domain.Dataset, error) {
	if paths.Workbook != "" {
		return l.LoadWorkbook(ctx, paths.Workbook)
	}
	return l.LoadDirectory(ctx, paths.InputDir)
}

// LoadDirectory reads the five CSV files of dir concurrently.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (*domain.Dataset, error) {
	required := make([]string, 0, len(domain.Tables()))
	for _, table := range domain.Tables() {
		required = append(required, domain.MustSchema(table).FileName())
	}
	if err := l.files.ValidateInputDirectory(dir, required); err != nil {
		return nil, apperrors.NewLoadError(dir, err)
	}

	ds := &domain.Dataset{}
	g, gctx := errgroup.WithContext(ctx)
	for _, table := range domain.Tables() {
		table := table
		path := filepath.Join(dir, domain.MustSchema(table).FileName())
		g.Go(func() error {
			raw, err := readCSVTable(path, table)
			if err != nil {
				return err
			}
			return decodeInto(gctx, raw, ds)
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.ErrorContext(ctx, "Failed to load source tables",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logLoaded(ctx, dir, ds)
	return ds, nil
}

// LoadWorkbook reads the five tables from the sheets of an .xlsx workbook.
func (l *Loader) LoadWorkbook(ctx context.Context, path string) (*domain.Dataset, error) {
	if err := l.files.ValidateExcelFile(path); err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}

	tables, err := readWorkbookTables(path)
	if err != nil {
		return nil, err
	}

	ds := &domain.Dataset{}
	for _, table := range domain.Tables() {
		if err := decodeInto(ctx, tables[table], ds); err != nil {
			l.logger.ErrorContext(ctx, "Failed to load workbook sheet",
				slog.String("workbook", path),
				slog.String("table", string(table)),
				slog.String("error", err.Error()))
			return nil, err
		}
	}

	l.logLoaded(ctx, path, ds)
	return ds, nil
}

// decodeInto decodes raw into the matching field of ds. Each table writes
// only its own field, so concurrent calls for distinct tables are safe.
func decodeInto(ctx context.Context, raw rawTable, ds *domain.Dataset) error {
	var err error
	switch raw.table {
	case domain.TableSubscribers:
		ds.Subscribers, err = decodeRows(ctx, raw, decodeSubscriber)
	case domain.TableUsage:
		ds.Usage, err = decodeRows(ctx, raw, decodeUsage)
	case domain.TableBilling:
		ds.Billing, err = decodeRows(ctx, raw, decodeBilling)
	case domain.TableTickets:
		ds.Tickets, err = decodeRows(ctx, raw, decodeTicket)
	case domain.TableOutages:
		ds.Outages, err = decodeRows(ctx, raw, decodeOutage)
	}
	return err
}

func (l *Loader) logLoaded(ctx context.Context, source string, ds *domain.Dataset) {
	counts := ds.RowCounts()
	attrs := []any{slog.String("source", source)}
	for _, table := range domain.Tables() {
		attrs = append(attrs, slog.Int(string(table), counts[table]))
		l.metrics.RecordRowsLoaded(ctx, string(table), counts[table])
	}
	l.logger.InfoContext(ctx, "Source tables loaded", attrs...)
}
