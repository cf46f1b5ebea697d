// Package exporter persists cleaned datasets.
//
// Exporter writes one <table>_clean.csv per table, header row equal to the
// in-memory column names with the flag columns appended last. Every file is
// written under a temporary name and renamed, so a failed run leaves no
// partial output. When enabled, WriteWorkbook adds a single .xlsx with one
// sheet per table and a Summary sheet.
//
// Example usage:
//
//	exp := exporter.New(cfg.Paths.OutputDir, cfg.Export, logger)
//	written, err := exp.Persist(ctx, cleaned, rep)
package exporter
