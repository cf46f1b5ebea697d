package exporter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"telcoclean/internal/config"
	apperrors "telcoclean/internal/errors"
	"telcoclean/internal/report"
	"telcoclean/pkg/contracts/domain"
)

// Exporter persists a cleaned dataset as <table>_clean.csv files, plus an
// optional workbook.
type Exporter struct {
	dir    string
	cfg    config.ExportConfig
	csv    *CSVWriter
	logger *slog.Logger
}

// New returns an exporter writing into dir.
func New(dir string, cfg config.ExportConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		dir:    dir,
		cfg:    cfg,
		csv:    NewCSVWriter(logger),
		logger: logger,
	}
}

// Persist writes every table and returns the paths written. All five CSV
// files are staged under temporary names first; if any of them fails,
// nothing is renamed into place and an existing output stays untouched.
func (e *Exporter) Persist(ctx context.Context, ds *domain.Dataset, rep *report.Report) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create output directory", err).
			WithContext("dir", e.dir)
	}

	type staged struct{ tmp, final string }
	var files []staged
	discard := func() {
		for _, s := range files {
			os.Remove(s.tmp)
		}
	}

	for _, table := range domain.Tables() {
		if err := ctx.Err(); err != nil {
			discard()
			return nil, apperrors.NewStorageError("persist cancelled", err)
		}

		header, rows, err := TableRecords(ds, table)
		if err != nil {
			discard()
			return nil, apperrors.NewStorageError("failed to encode table", err).WithContext("table", string(table))
		}

		final := filepath.Join(e.dir, domain.MustSchema(table).CleanFileName())
		tmp, err := e.csv.writeTemp(final, WriteOptions{
			Headers:   header,
			Records:   rows,
			BOMPrefix: e.cfg.BOMPrefix,
		})
		if err != nil {
			discard()
			return nil, apperrors.NewStorageError("failed to write table", err).WithContext("table", string(table))
		}
		files = append(files, staged{tmp: tmp, final: final})
	}

	written := make([]string, 0, len(files)+1)
	for i, s := range files {
		if err := os.Rename(s.tmp, s.final); err != nil {
			for _, rest := range files[i:] {
				os.Remove(rest.tmp)
			}
			return written, apperrors.NewStorageError("failed to move table into place", err).
				WithContext("file", s.final)
		}
		written = append(written, s.final)
	}

	if e.cfg.Workbook {
		path := filepath.Join(e.dir, e.cfg.WorkbookName)
		if err := WriteWorkbook(path, ds, rep); err != nil {
			return written, apperrors.NewStorageError("failed to write workbook", err).WithContext("file", path)
		}
		written = append(written, path)
	}

	e.logger.InfoContext(ctx, "cleaned tables persisted",
		slog.String("dir", e.dir),
		slog.Int("files", len(written)))
	return written, nil
}
