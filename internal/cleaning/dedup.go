package cleaning

import (
	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

// Deduplicator keeps the first row per primary key in every table.
type Deduplicator struct {
	keys map[domain.TableName]FieldRef
}

// NewDeduplicator validates keys, which maps every table to its key column.
func NewDeduplicator(keys map[domain.TableName]string) (*Deduplicator, error) {
	d := &Deduplicator{keys: make(map[domain.TableName]FieldRef, len(keys))}
	for _, table := range domain.Tables() {
		column, ok := keys[table]
		if !ok || column == "" {
			return nil, apperrors.NewAppValidationError("deduplication key not declared").
				WithContext("table", string(table))
		}
		ref := FieldRef{table, column}
		if _, ok := stringFields[ref]; !ok {
			return nil, apperrors.NewAppValidationError("deduplication key is not a text column").
				WithContext("field", ref.String())
		}
		d.keys[table] = ref
	}
	return d, nil
}

// Apply drops every row whose key was already seen earlier in the same
// table. It returns the removed count per table. Running it twice removes
// nothing the second time.
func (d *Deduplicator) Apply(ds *domain.Dataset, corrections *Corrections) map[domain.TableName]int {
	removed := make(map[domain.TableName]int, len(d.keys))
	for _, table := range domain.Tables() {
		ref := d.keys[table]
		key := stringFields[ref]

		seen := make(map[string]struct{}, rowCount(ds, table))
		n := retainRows(ds, table, func(i int) bool {
			k := *key(ds, i)
			if _, dup := seen[k]; dup {
				return false
			}
			seen[k] = struct{}{}
			return true
		})

		removed[table] = n
		corrections.Add(ruleName(ref, "duplicates_removed"), n)
	}
	return removed
}
