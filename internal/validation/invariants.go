package validation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"telcoclean/internal/config"
	"telcoclean/pkg/contracts/domain"
)

// Violation is one broken post-cleaning invariant.
type Violation struct {
	Table   domain.TableName `json:"table"`
	Row     int              `json:"row"`
	Rule    string           `json:"rule"`
	Message string           `json:"message"`
}

func (v Violation) String() string {
	if v.Row < 0 {
		return fmt.Sprintf("%s: %s: %s", v.Table, v.Rule, v.Message)
	}
	return fmt.Sprintf("%s row %d: %s: %s", v.Table, v.Row, v.Rule, v.Message)
}

// DatasetValidator checks a cleaned dataset against the invariants the
// pipeline guarantees. A non-empty result means a stage is broken, not that
// the input was dirty.
type DatasetValidator struct {
	validate *validator.Validate
	rules    config.RulesConfig
	logger   *slog.Logger
}

// NewDatasetValidator creates a validator for datasets cleaned with rules.
func NewDatasetValidator(rules config.RulesConfig, logger *slog.Logger) *DatasetValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		rules:    rules,
		logger:   logger.With(slog.String("component", "dataset_validator")),
	}
}

// Check returns every violation found in ds.
func (v *DatasetValidator) Check(ds *domain.Dataset) []Violation {
	var out []Violation
	out = append(out, v.structViolations(ds)...)
	out = append(out, duplicateKeys(ds)...)
	out = append(out, v.usageViolations(ds)...)
	out = append(out, v.billingViolations(ds)...)
	out = append(out, ticketViolations(ds)...)
	out = append(out, v.outageViolations(ds)...)

	if len(out) > 0 {
		v.logger.Warn("cleaned dataset violates invariants", slog.Int("violations", len(out)))
	}
	return out
}

// Strings renders violations for reports.
func Strings(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.String())
	}
	return out
}

var structTables = map[string]domain.TableName{
	"Subscribers": domain.TableSubscribers,
	"Usage":       domain.TableUsage,
	"Billing":     domain.TableBilling,
	"Tickets":     domain.TableTickets,
	"Outages":     domain.TableOutages,
}

// structViolations applies the validate tags of the domain types.
func (v *DatasetValidator) structViolations(ds *domain.Dataset) []Violation {
	err := v.validate.Struct(ds)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Violation{{Row: -1, Rule: "struct", Message: err.Error()}}
	}

	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		table, row := locate(fe.StructNamespace())
		out = append(out, Violation{
			Table:   table,
			Row:     row,
			Rule:    fe.Tag(),
			Message: fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()),
		})
	}
	return out
}

// locate parses a namespace such as "Dataset.Billing[3].BillAmount".
func locate(ns string) (domain.TableName, int) {
	var field string
	var row int
	for name, table := range structTables {
		if _, err := fmt.Sscanf(ns, "Dataset."+name+"[%d].%s", &row, &field); err == nil {
			return table, row
		}
	}
	return "", -1
}

func duplicateKeys(ds *domain.Dataset) []Violation {
	var out []Violation
	check := func(table domain.TableName, n int, key func(int) string) {
		seen := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			k := key(i)
			if _, ok := seen[k]; ok {
				out = append(out, Violation{Table: table, Row: i, Rule: "unique_key", Message: fmt.Sprintf("duplicate key %s", k)})
				continue
			}
			seen[k] = struct{}{}
		}
	}
	check(domain.TableSubscribers, len(ds.Subscribers), func(i int) string { return ds.Subscribers[i].SubscriberID })
	check(domain.TableUsage, len(ds.Usage), func(i int) string { return ds.Usage[i].UsageID })
	check(domain.TableBilling, len(ds.Billing), func(i int) string { return ds.Billing[i].BillID })
	check(domain.TableTickets, len(ds.Tickets), func(i int) string { return ds.Tickets[i].TicketID })
	check(domain.TableOutages, len(ds.Outages), func(i int) string { return ds.Outages[i].OutageID })
	return out
}

func (v *DatasetValidator) usageViolations(ds *domain.Dataset) []Violation {
	activated := make(map[string]domain.Subscriber, len(ds.Subscribers))
	for _, s := range ds.Subscribers {
		activated[s.SubscriberID] = s
	}

	var out []Violation
	add := func(i int, rule, msg string) {
		out = append(out, Violation{Table: domain.TableUsage, Row: i, Rule: rule, Message: msg})
	}
	for i, u := range ds.Usage {
		sub, ok := activated[u.SubscriberID]
		switch {
		case !ok:
			add(i, "subscriber_exists", fmt.Sprintf("unknown subscriber %s", u.SubscriberID))
		case u.UsageDate.Before(sub.ActivationDate):
			add(i, "after_activation", fmt.Sprintf("usage_date %s before activation %s",
				u.UsageDate.Format("2006-01-02"), sub.ActivationDate.Format("2006-01-02")))
		}
		if u.DataUsageGB == nil {
			continue
		}
		if *u.DataUsageGB > v.rules.UsageCapGB {
			add(i, "usage_cap", fmt.Sprintf("data_usage_gb %g above cap %g", *u.DataUsageGB, v.rules.UsageCapGB))
		}
		if u.OutlierFlag && *u.DataUsageGB != v.rules.UsageCapGB {
			add(i, "flag_implies_condition", "outlier_flag set on a value that was not capped")
		}
	}
	return out
}

func (v *DatasetValidator) billingViolations(ds *domain.Dataset) []Violation {
	var out []Violation
	for i, b := range ds.Billing {
		missingPayment := b.PaymentStatus == domain.PaymentStatusPaid && b.PaymentDate == nil
		want := missingPayment || b.BillAmount > v.rules.BillFlagAmount
		if b.DataQualityFlag != want {
			out = append(out, Violation{
				Table:   domain.TableBilling,
				Row:     i,
				Rule:    "flag_implies_condition",
				Message: fmt.Sprintf("data_quality_flag %t, expected %t", b.DataQualityFlag, want),
			})
		}
	}
	return out
}

func ticketViolations(ds *domain.Dataset) []Violation {
	var out []Violation
	add := func(i int, rule, msg string) {
		out = append(out, Violation{Table: domain.TableTickets, Row: i, Rule: rule, Message: msg})
	}
	for i, t := range ds.Tickets {
		if t.ResolutionDate != nil && t.ResolutionDate.Before(t.TicketDate) {
			add(i, "resolution_after_ticket", "resolution_date before ticket_date")
		}
		if t.Status == domain.TicketStatusResolved && t.ResolutionDate == nil {
			add(i, "resolved_has_date", "Resolved ticket without resolution_date")
		}
		if t.DataQualityFlag && t.ResolutionDate != nil {
			add(i, "flag_implies_condition", "data_quality_flag set on a ticket with a resolution_date")
		}
	}
	return out
}

func (v *DatasetValidator) outageViolations(ds *domain.Dataset) []Violation {
	var out []Violation
	for i, o := range ds.Outages {
		if o.EndTime.Before(o.StartTime) {
			out = append(out, Violation{Table: domain.TableOutages, Row: i, Rule: "end_after_start", Message: "outage_end_time before outage_start_time"})
		}
		if o.DurationMins == nil {
			continue
		}
		want := *o.DurationMins > v.rules.OutageFlagMinutes
		if o.OutlierFlag != want {
			out = append(out, Violation{
				Table:   domain.TableOutages,
				Row:     i,
				Rule:    "flag_implies_condition",
				Message: fmt.Sprintf("outlier_flag %t, expected %t", o.OutlierFlag, want),
			})
		}
	}
	return out
}
