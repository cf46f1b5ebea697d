package cleaning

import (
	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

type compiledOutlierRule struct {
	rule  OutlierRule
	value numberAccessor
	flag  flagAccessor
}

// OutlierHandler caps or flags values above their configured threshold.
type OutlierHandler struct {
	rules []compiledOutlierRule
}

// NewOutlierHandler rejects non-positive thresholds and unknown columns.
func NewOutlierHandler(rules []OutlierRule) (*OutlierHandler, error) {
	h := &OutlierHandler{}
	for _, rule := range rules {
		invalid := func(msg string) error {
			return apperrors.NewAppValidationError(msg).
				WithContext("field", rule.Field.String())
		}

		if rule.Threshold <= 0 {
			return nil, invalid("outlier threshold must be positive")
		}
		value, ok := numericValue(rule.Field)
		if !ok {
			return nil, invalid("outlier rule needs a numeric column")
		}
		flag, ok := flagFields[FieldRef{rule.Field.Table, rule.Flag}]
		if !ok {
			return nil, invalid("outlier rule needs a flag column")
		}
		switch rule.Action {
		case ActionCapAndFlag, ActionFlag:
		default:
			return nil, invalid("unknown outlier action")
		}
		switch rule.Mode {
		case FlagAssign, FlagMerge:
		default:
			return nil, invalid("unknown flag mode")
		}

		h.rules = append(h.rules, compiledOutlierRule{rule: rule, value: value, flag: flag})
	}
	return h, nil
}

// Apply evaluates value > threshold for every row. Capped values are set to
// the threshold. It returns the number of rows above threshold per column.
func (h *OutlierHandler) Apply(ds *domain.Dataset, corrections *Corrections) map[FieldRef]int {
	hits := make(map[FieldRef]int, len(h.rules))
	for _, c := range h.rules {
		n := 0
		for i := 0; i < rowCount(ds, c.rule.Field.Table); i++ {
			v := c.value(ds, i)
			over := v != nil && *v > c.rule.Threshold

			flag := c.flag(ds, i)
			if c.rule.Mode == FlagAssign {
				*flag = over
			} else if over {
				*flag = true
			}

			if !over {
				continue
			}
			if c.rule.Action == ActionCapAndFlag {
				*v = c.rule.Threshold
			}
			n++
		}

		hits[c.rule.Field] += n
		action := "flagged"
		if c.rule.Action == ActionCapAndFlag {
			action = "capped"
		}
		corrections.Add(ruleName(c.rule.Field, action), n)
	}
	return hits
}
