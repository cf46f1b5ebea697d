package report

import (
	"sort"

	"telcoclean/internal/config"
	"telcoclean/pkg/contracts/domain"
)

// FieldCount is a count attached to one column.
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// ValueCount is the number of rows holding one label.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// LabelDistribution is the value counts of a categorical column, most
// frequent first.
type LabelDistribution struct {
	Field  string       `json:"field"`
	Values []ValueCount `json:"values"`
}

// Profile is the data-quality view of a raw dataset, taken before any
// cleaning stage runs.
type Profile struct {
	Rows                  []TableCount        `json:"rows"`
	Missing               []FieldCount        `json:"missing"`
	Duplicates            []TableCount        `json:"duplicates"`
	UsageOutlierGB        float64             `json:"usage_outlier_gb"`
	UsageOutliers         int                 `json:"usage_outliers"`
	BillOutlierAmount     float64             `json:"bill_outlier_amount"`
	BillOutliers          int                 `json:"bill_outliers"`
	NegativeBills         int                 `json:"negative_bills"`
	ImpossibleTicketDates int                 `json:"impossible_ticket_dates"`
	UsageBeforeActivation int                 `json:"usage_before_activation"`
	OrphanUsage           int                 `json:"orphan_usage"`
	Labels                []LabelDistribution `json:"labels"`
}

// NewProfile measures ds against the reporting thresholds of cfg. These
// thresholds are independent of the cleaning rules.
func NewProfile(ds *domain.Dataset, cfg config.ReportConfig) *Profile {
	p := &Profile{
		Rows:              tableCounts(ds.RowCounts()),
		UsageOutlierGB:    cfg.UsageOutlierGB,
		BillOutlierAmount: cfg.BillOutlierAmount,
	}

	var missingUsage, missingPayment, missingResolution, missingDuration int
	activated := make(map[string]domain.Subscriber, len(ds.Subscribers))
	for _, s := range ds.Subscribers {
		if _, seen := activated[s.SubscriberID]; !seen {
			activated[s.SubscriberID] = s
		}
	}

	for _, u := range ds.Usage {
		if u.DataUsageGB == nil {
			missingUsage++
		} else if *u.DataUsageGB > cfg.UsageOutlierGB {
			p.UsageOutliers++
		}
		sub, ok := activated[u.SubscriberID]
		switch {
		case !ok:
			p.OrphanUsage++
		case u.UsageDate.Before(sub.ActivationDate):
			p.UsageBeforeActivation++
		}
	}
	for _, b := range ds.Billing {
		if b.PaymentDate == nil {
			missingPayment++
		}
		if b.BillAmount > cfg.BillOutlierAmount {
			p.BillOutliers++
		}
		if b.BillAmount < 0 {
			p.NegativeBills++
		}
	}
	for _, t := range ds.Tickets {
		if t.ResolutionDate == nil {
			missingResolution++
		} else if t.ResolutionDate.Before(t.TicketDate) {
			p.ImpossibleTicketDates++
		}
	}
	for _, o := range ds.Outages {
		if o.DurationMins == nil {
			missingDuration++
		}
	}

	p.Missing = []FieldCount{
		{Field: "usage_records.data_usage_gb", Count: missingUsage},
		{Field: "billing.payment_date", Count: missingPayment},
		{Field: "tickets.resolution_date", Count: missingResolution},
		{Field: "network_outages.outage_duration_mins", Count: missingDuration},
	}

	for _, table := range domain.Tables() {
		p.Duplicates = append(p.Duplicates, TableCount{Table: table, Rows: duplicateKeys(keyValues(ds, table))})
	}

	p.Labels = []LabelDistribution{
		distribution("subscribers.plan_type", len(ds.Subscribers), func(i int) string { return ds.Subscribers[i].PlanType }),
		distribution("subscribers.city", len(ds.Subscribers), func(i int) string { return ds.Subscribers[i].City }),
		distribution("tickets.ticket_status", len(ds.Tickets), func(i int) string { return ds.Tickets[i].Status }),
	}

	return p
}

// DuplicateTotal returns the number of duplicate rows across all tables.
func (p *Profile) DuplicateTotal() int {
	total := 0
	for _, d := range p.Duplicates {
		total += d.Rows
	}
	return total
}

func keyValues(ds *domain.Dataset, table domain.TableName) []string {
	var keys []string
	switch table {
	case domain.TableSubscribers:
		for _, r := range ds.Subscribers {
			keys = append(keys, r.SubscriberID)
		}
	case domain.TableUsage:
		for _, r := range ds.Usage {
			keys = append(keys, r.UsageID)
		}
	case domain.TableBilling:
		for _, r := range ds.Billing {
			keys = append(keys, r.BillID)
		}
	case domain.TableTickets:
		for _, r := range ds.Tickets {
			keys = append(keys, r.TicketID)
		}
	case domain.TableOutages:
		for _, r := range ds.Outages {
			keys = append(keys, r.OutageID)
		}
	}
	return keys
}

// duplicateKeys counts the rows whose key already appeared earlier.
func duplicateKeys(keys []string) int {
	seen := make(map[string]struct{}, len(keys))
	dups := 0
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

func distribution(field string, n int, value func(i int) string) LabelDistribution {
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		counts[value(i)]++
	}

	values := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, ValueCount{Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})

	return LabelDistribution{Field: field, Values: values}
}
