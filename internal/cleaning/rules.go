package cleaning

import (
	"telcoclean/internal/config"
	"telcoclean/pkg/contracts/domain"
)

// MissingStrategy selects how a missing value is resolved.
type MissingStrategy string

const (
	// StrategyGroupMean fills nulls with the mean of the non-null values
	// sharing the same GroupBy value, or Fallback when the group has none.
	StrategyGroupMean MissingStrategy = "group_mean"
	// StrategyFlagOnly leaves the null in place and raises Flag on rows
	// matching When.
	StrategyFlagOnly MissingStrategy = "flag_only"
	// StrategyDerived computes the value from other columns of the row.
	StrategyDerived MissingStrategy = "derived"
)

// Condition matches rows whose Column equals Equals.
type Condition struct {
	Column string
	Equals string
}

// MissingRule resolves the nulls of one column.
type MissingRule struct {
	Field    FieldRef
	Strategy MissingStrategy
	GroupBy  string
	Fallback float64
	When     *Condition
	Flag     string
}

// OutlierAction selects what happens to a value above threshold.
type OutlierAction string

const (
	ActionCapAndFlag OutlierAction = "cap_and_flag"
	ActionFlag       OutlierAction = "flag"
)

// FlagMode selects how the predicate lands on the flag column.
type FlagMode string

const (
	// FlagAssign overwrites the flag with the predicate.
	FlagAssign FlagMode = "assign"
	// FlagMerge ORs the predicate onto the flag.
	FlagMerge FlagMode = "merge"
)

// OutlierRule compares one numeric column against Threshold with a strict
// greater-than.
type OutlierRule struct {
	Field     FieldRef
	Threshold float64
	Action    OutlierAction
	Flag      string
	Mode      FlagMode
}

// LabelMapping rewrites variant spellings of a label column to a canonical
// value. Matching is exact and case-sensitive.
type LabelMapping struct {
	Field    FieldRef
	Variants map[string][]string // canonical -> variants
}

// Rules is the declarative rule set of the pipeline. Stage code interprets
// it; changing remediation behaviour means editing these tables.
type Rules struct {
	Keys     map[domain.TableName]string
	Mappings []LabelMapping
	Missing  []MissingRule
	Outliers []OutlierRule
	Repairs  []RepairRule
}

// DefaultRules returns the rule set with thresholds taken from cfg.
func DefaultRules(cfg config.RulesConfig) Rules {
	return Rules{
		Keys:     DefaultKeys(),
		Mappings: DefaultMappings(),
		Missing:  DefaultMissingRules(),
		Outliers: OutlierRules(cfg),
		Repairs:  DefaultRepairRules(),
	}
}

// DefaultKeys returns the primary key column of every table.
func DefaultKeys() map[domain.TableName]string {
	keys := make(map[domain.TableName]string, len(domain.Tables()))
	for _, table := range domain.Tables() {
		keys[table] = domain.MustSchema(table).Key
	}
	return keys
}

// DefaultMappings returns the label synonym tables.
func DefaultMappings() []LabelMapping {
	return []LabelMapping{
		{
			Field: FieldRef{domain.TableSubscribers, "plan_type"},
			Variants: map[string][]string{
				"Prepaid":  {"prepaid", "PREPAID", "Pre-paid"},
				"Postpaid": {"postpaid", "POSTPAID", "Post-paid"},
			},
		},
		{
			Field: FieldRef{domain.TableSubscribers, "city"},
			Variants: map[string][]string{
				"Abu Dhabi": {"AbuDhabi", "Abu-Dhabi", "AD"},
				"Dubai":     {"dubai", "DUBAI"},
			},
		},
		{
			Field: FieldRef{domain.TableTickets, "ticket_status"},
			Variants: map[string][]string{
				domain.TicketStatusResolved: {"resolved", "RESOLVED", "Closed"},
				domain.TicketStatusOpen:     {"open", "OPEN"},
			},
		},
	}
}

// DefaultMissingRules returns one rule per nullable column that needs one.
func DefaultMissingRules() []MissingRule {
	return []MissingRule{
		{
			Field:    FieldRef{domain.TableUsage, "data_usage_gb"},
			Strategy: StrategyGroupMean,
			GroupBy:  "subscriber_id",
			Fallback: 0,
		},
		{
			Field:    FieldRef{domain.TableBilling, "payment_date"},
			Strategy: StrategyFlagOnly,
			When:     &Condition{Column: "payment_status", Equals: domain.PaymentStatusPaid},
			Flag:     "data_quality_flag",
		},
		{
			Field:    FieldRef{domain.TableTickets, "resolution_date"},
			Strategy: StrategyFlagOnly,
			When:     &Condition{Column: "ticket_status", Equals: domain.TicketStatusResolved},
			Flag:     "data_quality_flag",
		},
		{
			Field:    FieldRef{domain.TableOutages, "outage_duration_mins"},
			Strategy: StrategyDerived,
		},
	}
}

// OutlierRules returns the threshold rules configured by cfg.
func OutlierRules(cfg config.RulesConfig) []OutlierRule {
	return []OutlierRule{
		{
			Field:     FieldRef{domain.TableUsage, "data_usage_gb"},
			Threshold: cfg.UsageCapGB,
			Action:    ActionCapAndFlag,
			Flag:      "outlier_flag",
			Mode:      FlagAssign,
		},
		{
			Field:     FieldRef{domain.TableBilling, "bill_amount"},
			Threshold: cfg.BillFlagAmount,
			Action:    ActionFlag,
			Flag:      "data_quality_flag",
			Mode:      FlagMerge,
		},
		{
			Field:     FieldRef{domain.TableOutages, "outage_duration_mins"},
			Threshold: cfg.OutageFlagMinutes,
			Action:    ActionFlag,
			Flag:      "outlier_flag",
			Mode:      FlagAssign,
		},
	}
}
