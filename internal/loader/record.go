package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

// dateLayouts are tried in order before falling back to cast's wider set.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// record is one data row with access by column name.
type record struct {
	table  domain.TableName
	line   int
	cells  []string
	index  map[string]int
	serial bool // date cells may hold Excel serial numbers
}

// cell returns the value exactly as stored.
func (r record) cell(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// raw returns the cell without surrounding whitespace, for parsing.
func (r record) raw(col string) string {
	return strings.TrimSpace(r.cell(col))
}

func (r record) cellError(col string, cause error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("%s line %d column %s: invalid value %q", r.table, r.line, col, r.raw(col)), cause).
		WithContext("table", string(r.table)).
		WithContext("line", r.line).
		WithContext("column", col)
}

// str keeps text verbatim; label canonicalization is an exact match, so
// " DUBAI " is not "DUBAI".
func (r record) str(col string) string {
	return r.cell(col)
}

func (r record) float(col string) (float64, error) {
	v, err := r.nullableFloat(col)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, r.cellError(col, fmt.Errorf("value is required"))
	}
	return *v, nil
}

func (r record) nullableFloat(col string) (*float64, error) {
	s := r.raw(col)
	if isNull(s) {
		return nil, nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return nil, r.cellError(col, err)
	}
	return &v, nil
}

// int accepts integral floats such as "12.0", which spreadsheet round trips produce.
func (r record) int(col string) (int64, error) {
	s := r.raw(col)
	if isNull(s) {
		return 0, r.cellError(col, fmt.Errorf("value is required"))
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || f != float64(int64(f)) {
		return 0, r.cellError(col, fmt.Errorf("not an integer"))
	}
	return int64(f), nil
}

// flag reads an optional boolean audit column; absent or empty is false.
func (r record) flag(col string) (bool, error) {
	s := r.raw(col)
	if s == "" {
		return false, nil
	}
	v, err := cast.ToBoolE(strings.ToLower(s))
	if err != nil {
		return false, r.cellError(col, err)
	}
	return v, nil
}

func (r record) time(col string) (time.Time, error) {
	v, err := r.nullableTime(col)
	if err != nil {
		return time.Time{}, err
	}
	if v == nil {
		return time.Time{}, r.cellError(col, fmt.Errorf("value is required"))
	}
	return *v, nil
}

func (r record) nullableTime(col string) (*time.Time, error) {
	s := r.raw(col)
	if isNull(s) {
		return nil, nil
	}
	t, err := parseTime(s, r.serial)
	if err != nil {
		return nil, r.cellError(col, err)
	}
	return &t, nil
}

func parseTime(s string, serial bool) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if serial {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return excelize.ExcelDateToTime(f, false)
		}
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// isNull matches the empty markers pandas writes for missing values.
func isNull(s string) bool {
	switch s {
	case "", "NaN", "nan", "NaT", "None", "null":
		return true
	}
	return false
}
