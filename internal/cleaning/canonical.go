package cleaning

import (
	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

type compiledMapping struct {
	field    FieldRef
	get      stringAccessor
	variants map[string]string // variant -> canonical
}

// Canonicalizer rewrites label variants to their canonical spelling.
type Canonicalizer struct {
	mappings []compiledMapping
}

// NewCanonicalizer compiles mappings. It rejects empty mappings, unknown or
// non-text columns, a canonical value that is also listed as a variant, and
// a variant claimed by two canonical values.
func NewCanonicalizer(mappings []LabelMapping) (*Canonicalizer, error) {
	c := &Canonicalizer{mappings: make([]compiledMapping, 0, len(mappings))}

	for _, m := range mappings {
		get, ok := stringFields[m.Field]
		if !ok {
			return nil, apperrors.NewAppValidationError("label mapping targets an unknown column").
				WithContext("field", m.Field.String())
		}
		if len(m.Variants) == 0 {
			return nil, apperrors.NewAppValidationError("label mapping is empty").
				WithContext("field", m.Field.String())
		}

		compiled := compiledMapping{field: m.Field, get: get, variants: make(map[string]string)}
		for canonical, variants := range m.Variants {
			if canonical == "" || len(variants) == 0 {
				return nil, apperrors.NewAppValidationError("label mapping has an empty entry").
					WithContext("field", m.Field.String()).
					WithContext("canonical", canonical)
			}
			for _, v := range variants {
				if prev, dup := compiled.variants[v]; dup && prev != canonical {
					return nil, apperrors.NewAppValidationError("variant maps to two canonical values").
						WithContext("field", m.Field.String()).
						WithContext("variant", v)
				}
				compiled.variants[v] = canonical
			}
		}
		for canonical := range m.Variants {
			if _, clash := compiled.variants[canonical]; clash {
				return nil, apperrors.NewAppValidationError("canonical value is also a variant").
					WithContext("field", m.Field.String()).
					WithContext("canonical", canonical)
			}
		}

		c.mappings = append(c.mappings, compiled)
	}
	return c, nil
}

// Apply rewrites every mapped value in place and returns the number of
// cells changed per column. Unmapped values pass through unchanged.
func (c *Canonicalizer) Apply(ds *domain.Dataset, corrections *Corrections) map[FieldRef]int {
	changed := make(map[FieldRef]int, len(c.mappings))
	for _, m := range c.mappings {
		n := 0
		for i := 0; i < rowCount(ds, m.field.Table); i++ {
			cell := m.get(ds, i)
			if canonical, ok := m.variants[*cell]; ok {
				*cell = canonical
				n++
			}
		}
		changed[m.field] += n
		corrections.Add(ruleName(m.field, "standardized"), n)
	}
	return changed
}
