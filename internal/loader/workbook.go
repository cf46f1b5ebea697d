package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

// readWorkbookTables reads one sheet per table from an .xlsx workbook.
// Cell values are read raw so that date cells arrive as serial numbers
// rather than in the workbook's display format.
func readWorkbookTables(path string) (map[domain.TableName]rawTable, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}
	defer f.Close()

	sheets := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}

	tables := make(map[domain.TableName]rawTable, len(domain.Tables()))
	for _, table := range domain.Tables() {
		sheet := string(table)
		if !sheets[sheet] {
			return nil, apperrors.NewLoadError(path, fmt.Errorf("sheet %s not found", sheet)).
				WithContext("table", sheet)
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apperrors.NewLoadError(path, err).WithContext("table", sheet)
		}
		if len(rows) == 0 {
			return nil, apperrors.NewLoadError(path, fmt.Errorf("sheet %s is empty", sheet)).
				WithContext("table", sheet)
		}

		tables[table] = rawTable{
			table:     table,
			source:    fmt.Sprintf("%s[%s]", path, sheet),
			header:    rows[0],
			rows:      rows[1:],
			firstLine: 2,
			serial:    true,
		}
	}
	return tables, nil
}
