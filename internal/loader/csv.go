package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

// readCSVTable reads a comma-separated file with a header row. Rows may be
// shorter than the header; missing trailing cells read as empty.
func readCSVTable(path string, table domain.TableName) (rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return rawTable{}, apperrors.NewLoadError(path, err).WithContext("table", string(table))
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return rawTable{}, apperrors.NewLoadError(path, fmt.Errorf("file is empty")).WithContext("table", string(table))
	}
	if err != nil {
		return rawTable{}, apperrors.NewLoadError(path, err).WithContext("table", string(table))
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return rawTable{}, apperrors.NewLoadError(path, err).WithContext("table", string(table))
	}

	return rawTable{
		table:     table,
		source:    path,
		header:    header,
		rows:      rows,
		firstLine: 2,
	}, nil
}
