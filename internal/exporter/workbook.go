package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"telcoclean/internal/report"
	"telcoclean/pkg/contracts/domain"
)

// SummarySheet is the workbook sheet holding the run report.
const SummarySheet = "Summary"

// WriteWorkbook writes one sheet per table, named after the table, plus a
// Summary sheet built from rep when it is not nil. The file is written to a
// temporary name and renamed.
func WriteWorkbook(path string, ds *domain.Dataset, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range domain.Tables() {
		header, rows, err := TableRecords(ds, table)
		if err != nil {
			return err
		}

		sheet := string(table)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := writeSheetRows(f, sheet, header, rows); err != nil {
			return err
		}
	}

	if rep != nil {
		if err := writeSummarySheet(f, rep); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := file.Name()
	if _, err := f.WriteTo(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename workbook: %w", err)
	}
	return nil
}

func writeSheetRows(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	var rows [][]string
	rows = append(rows, []string{"section", "item", "value"})
	if rep.RunID != "" {
		rows = append(rows, []string{"run", "id", rep.RunID})
	}
	for _, tc := range rep.Rows {
		rows = append(rows, []string{"rows", string(tc.Table), formatInt(int64(tc.Rows))})
	}
	for _, fc := range rep.Flags {
		rows = append(rows, []string{"flags", string(fc.Table) + "." + fc.Column, formatInt(int64(fc.Flagged))})
	}
	for _, c := range rep.Corrections {
		rows = append(rows, []string{"corrections", c.Rule, formatInt(int64(c.Count))})
	}
	for _, item := range rep.Checklist {
		rows = append(rows, []string{"checklist", item.Name, formatBool(item.Done)})
	}
	for _, v := range rep.Violations {
		rows = append(rows, []string{"violations", v, ""})
	}

	return writeSheetRows(f, SummarySheet, rows[0], rows[1:])
}
