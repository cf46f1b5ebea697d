package cleaning

import (
	"fmt"

	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

type compiledMissingRule struct {
	rule  MissingRule
	apply func(ds *domain.Dataset) int
}

// MissingValueResolver applies the missing-value rule table.
type MissingValueResolver struct {
	rules []compiledMissingRule
}

// NewMissingValueResolver checks every rule against the columns its
// strategy needs.
func NewMissingValueResolver(rules []MissingRule) (*MissingValueResolver, error) {
	r := &MissingValueResolver{}
	for _, rule := range rules {
		apply, err := compileMissingRule(rule)
		if err != nil {
			return nil, err
		}
		r.rules = append(r.rules, compiledMissingRule{rule: rule, apply: apply})
	}
	return r, nil
}

func compileMissingRule(rule MissingRule) (func(ds *domain.Dataset) int, error) {
	invalid := func(msg string) error {
		return apperrors.NewAppValidationError(msg).
			WithContext("field", rule.Field.String()).
			WithContext("strategy", string(rule.Strategy))
	}

	switch rule.Strategy {
	case StrategyGroupMean:
		value, ok := nullableFloatFields[rule.Field]
		if !ok {
			return nil, invalid("group mean needs a nullable numeric column")
		}
		group, ok := stringFields[FieldRef{rule.Field.Table, rule.GroupBy}]
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown group column %q", rule.GroupBy))
		}
		return func(ds *domain.Dataset) int {
			return imputeGroupMean(ds, rule.Field.Table, value, group, rule.Fallback)
		}, nil

	case StrategyFlagOnly:
		value, ok := nullableTimeFields[rule.Field]
		if !ok {
			return nil, invalid("flag-only needs a nullable date column")
		}
		flag, ok := flagFields[FieldRef{rule.Field.Table, rule.Flag}]
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown flag column %q", rule.Flag))
		}
		if rule.When == nil {
			return nil, invalid("flag-only needs a condition")
		}
		cond, ok := stringFields[FieldRef{rule.Field.Table, rule.When.Column}]
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown condition column %q", rule.When.Column))
		}
		want := rule.When.Equals
		return func(ds *domain.Dataset) int {
			n := 0
			for i := 0; i < rowCount(ds, rule.Field.Table); i++ {
				if *value(ds, i) == nil && *cond(ds, i) == want {
					*flag(ds, i) = true
					n++
				}
			}
			return n
		}, nil

	case StrategyDerived:
		value, ok := nullableFloatFields[rule.Field]
		if !ok {
			return nil, invalid("derived needs a nullable numeric column")
		}
		derive, ok := derivations[rule.Field]
		if !ok {
			return nil, invalid("no derivation registered")
		}
		return func(ds *domain.Dataset) int {
			n := 0
			for i := 0; i < rowCount(ds, rule.Field.Table); i++ {
				cell := value(ds, i)
				if *cell == nil {
					*cell = domain.Ptr(derive(ds, i))
					n++
				}
			}
			return n
		}, nil
	}

	return nil, invalid("unknown strategy")
}

// imputeGroupMean fills nulls with the mean of the non-null values of the
// same group, computed before any cell is filled.
func imputeGroupMean(ds *domain.Dataset, table domain.TableName, value nullableFloatAccessor, group stringAccessor, fallback float64) int {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	rows := rowCount(ds, table)

	for i := 0; i < rows; i++ {
		v := *value(ds, i)
		if v == nil {
			continue
		}
		g := groups[*group(ds, i)]
		if g == nil {
			g = &acc{}
			groups[*group(ds, i)] = g
		}
		g.sum += *v
		g.count++
	}

	n := 0
	for i := 0; i < rows; i++ {
		cell := value(ds, i)
		if *cell != nil {
			continue
		}
		fill := fallback
		if g := groups[*group(ds, i)]; g != nil && g.count > 0 {
			fill = g.sum / float64(g.count)
		}
		*cell = domain.Ptr(fill)
		n++
	}
	return n
}

// Apply resets every flag column, then runs the rules in order. It returns
// the number of cells each rule touched.
func (r *MissingValueResolver) Apply(ds *domain.Dataset, corrections *Corrections) map[FieldRef]int {
	for _, ref := range FlagColumns() {
		flag := flagFields[ref]
		for i := 0; i < rowCount(ds, ref.Table); i++ {
			*flag(ds, i) = false
		}
	}

	touched := make(map[FieldRef]int, len(r.rules))
	for _, c := range r.rules {
		n := c.apply(ds)
		touched[c.rule.Field] += n
		corrections.Add(ruleName(c.rule.Field, missingAction(c.rule.Strategy)), n)
	}
	return touched
}

func missingAction(s MissingStrategy) string {
	switch s {
	case StrategyGroupMean:
		return "imputed"
	case StrategyFlagOnly:
		return "flagged_missing"
	case StrategyDerived:
		return "derived"
	}
	return string(s)
}
