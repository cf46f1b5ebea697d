package cleaning

import (
	"fmt"
	"time"

	"telcoclean/pkg/contracts/domain"
)

// FieldRef names one column of one table, e.g. tickets.ticket_status.
type FieldRef struct {
	Table  domain.TableName
	Column string
}

func (f FieldRef) String() string {
	return fmt.Sprintf("%s.%s", f.Table, f.Column)
}

// Field accessors give rule interpreters typed access to row i of a table
// without knowing the row type.
type (
	stringAccessor        func(ds *domain.Dataset, i int) *string
	numberAccessor        func(ds *domain.Dataset, i int) *float64
	nullableFloatAccessor func(ds *domain.Dataset, i int) **float64
	nullableTimeAccessor  func(ds *domain.Dataset, i int) **time.Time
	flagAccessor          func(ds *domain.Dataset, i int) *bool
)

func rowCount(ds *domain.Dataset, table domain.TableName) int {
	return ds.RowCounts()[table]
}

var stringFields = map[FieldRef]stringAccessor{
	{domain.TableSubscribers, "subscriber_id"}: func(ds *domain.Dataset, i int) *string { return &ds.Subscribers[i].SubscriberID },
	{domain.TableSubscribers, "city"}:          func(ds *domain.Dataset, i int) *string { return &ds.Subscribers[i].City },
	{domain.TableSubscribers, "plan_type"}:     func(ds *domain.Dataset, i int) *string { return &ds.Subscribers[i].PlanType },
	{domain.TableSubscribers, "plan_name"}:     func(ds *domain.Dataset, i int) *string { return &ds.Subscribers[i].PlanName },
	{domain.TableSubscribers, "status"}:        func(ds *domain.Dataset, i int) *string { return &ds.Subscribers[i].Status },
	{domain.TableUsage, "usage_id"}:            func(ds *domain.Dataset, i int) *string { return &ds.Usage[i].UsageID },
	{domain.TableUsage, "subscriber_id"}:       func(ds *domain.Dataset, i int) *string { return &ds.Usage[i].SubscriberID },
	{domain.TableBilling, "bill_id"}:           func(ds *domain.Dataset, i int) *string { return &ds.Billing[i].BillID },
	{domain.TableBilling, "subscriber_id"}:     func(ds *domain.Dataset, i int) *string { return &ds.Billing[i].SubscriberID },
	{domain.TableBilling, "payment_status"}:    func(ds *domain.Dataset, i int) *string { return &ds.Billing[i].PaymentStatus },
	{domain.TableTickets, "ticket_id"}:         func(ds *domain.Dataset, i int) *string { return &ds.Tickets[i].TicketID },
	{domain.TableTickets, "subscriber_id"}:     func(ds *domain.Dataset, i int) *string { return &ds.Tickets[i].SubscriberID },
	{domain.TableTickets, "ticket_category"}:   func(ds *domain.Dataset, i int) *string { return &ds.Tickets[i].Category },
	{domain.TableTickets, "ticket_status"}:     func(ds *domain.Dataset, i int) *string { return &ds.Tickets[i].Status },
	{domain.TableTickets, "ticket_channel"}:    func(ds *domain.Dataset, i int) *string { return &ds.Tickets[i].Channel },
	{domain.TableOutages, "outage_id"}:         func(ds *domain.Dataset, i int) *string { return &ds.Outages[i].OutageID },
	{domain.TableOutages, "affected_city"}:     func(ds *domain.Dataset, i int) *string { return &ds.Outages[i].AffectedCity },
	{domain.TableOutages, "outage_type"}:       func(ds *domain.Dataset, i int) *string { return &ds.Outages[i].OutageType },
}

var nullableFloatFields = map[FieldRef]nullableFloatAccessor{
	{domain.TableUsage, "data_usage_gb"}:          func(ds *domain.Dataset, i int) **float64 { return &ds.Usage[i].DataUsageGB },
	{domain.TableOutages, "outage_duration_mins"}: func(ds *domain.Dataset, i int) **float64 { return &ds.Outages[i].DurationMins },
}

var numberFields = map[FieldRef]numberAccessor{
	{domain.TableSubscribers, "monthly_charge"}: func(ds *domain.Dataset, i int) *float64 { return &ds.Subscribers[i].MonthlyCharge },
	{domain.TableUsage, "roaming_charges"}:      func(ds *domain.Dataset, i int) *float64 { return &ds.Usage[i].RoamingCharges },
	{domain.TableBilling, "bill_amount"}:        func(ds *domain.Dataset, i int) *float64 { return &ds.Billing[i].BillAmount },
}

var nullableTimeFields = map[FieldRef]nullableTimeAccessor{
	{domain.TableSubscribers, "churn_date"}:  func(ds *domain.Dataset, i int) **time.Time { return &ds.Subscribers[i].ChurnDate },
	{domain.TableBilling, "payment_date"}:    func(ds *domain.Dataset, i int) **time.Time { return &ds.Billing[i].PaymentDate },
	{domain.TableTickets, "resolution_date"}: func(ds *domain.Dataset, i int) **time.Time { return &ds.Tickets[i].ResolutionDate },
}

var flagFields = map[FieldRef]flagAccessor{
	{domain.TableUsage, "outlier_flag"}:        func(ds *domain.Dataset, i int) *bool { return &ds.Usage[i].OutlierFlag },
	{domain.TableBilling, "data_quality_flag"}: func(ds *domain.Dataset, i int) *bool { return &ds.Billing[i].DataQualityFlag },
	{domain.TableTickets, "data_quality_flag"}: func(ds *domain.Dataset, i int) *bool { return &ds.Tickets[i].DataQualityFlag },
	{domain.TableOutages, "outlier_flag"}:      func(ds *domain.Dataset, i int) *bool { return &ds.Outages[i].OutlierFlag },
}

// derivations compute a nullable column from other columns of the same row.
var derivations = map[FieldRef]func(ds *domain.Dataset, i int) float64{
	{domain.TableOutages, "outage_duration_mins"}: func(ds *domain.Dataset, i int) float64 {
		o := ds.Outages[i]
		return o.EndTime.Sub(o.StartTime).Minutes()
	},
}

// numericValue returns a reader for any numeric column, nullable or not.
// The reader returns nil for a null cell.
func numericValue(ref FieldRef) (numberAccessor, bool) {
	if get, ok := numberFields[ref]; ok {
		return get, true
	}
	if get, ok := nullableFloatFields[ref]; ok {
		return func(ds *domain.Dataset, i int) *float64 { return *get(ds, i) }, true
	}
	return nil, false
}

// FlagColumns lists the audit flag columns of the dataset.
func FlagColumns() []FieldRef {
	return []FieldRef{
		{domain.TableUsage, "outlier_flag"},
		{domain.TableBilling, "data_quality_flag"},
		{domain.TableTickets, "data_quality_flag"},
		{domain.TableOutages, "outlier_flag"},
	}
}

// CountFlags returns the number of rows with ref set.
func CountFlags(ds *domain.Dataset, ref FieldRef) int {
	get, ok := flagFields[ref]
	if !ok {
		return 0
	}
	n := 0
	for i := 0; i < rowCount(ds, ref.Table); i++ {
		if *get(ds, i) {
			n++
		}
	}
	return n
}

// retainRows drops the rows of table for which keep returns false and
// returns how many were dropped. keep is evaluated for every row before any
// row moves, so it may read the table freely.
func retainRows(ds *domain.Dataset, table domain.TableName, keep func(i int) bool) int {
	mask := make([]bool, rowCount(ds, table))
	for i := range mask {
		mask[i] = keep(i)
	}

	var removed int
	switch table {
	case domain.TableSubscribers:
		ds.Subscribers, removed = retain(ds.Subscribers, mask)
	case domain.TableUsage:
		ds.Usage, removed = retain(ds.Usage, mask)
	case domain.TableBilling:
		ds.Billing, removed = retain(ds.Billing, mask)
	case domain.TableTickets:
		ds.Tickets, removed = retain(ds.Tickets, mask)
	case domain.TableOutages:
		ds.Outages, removed = retain(ds.Outages, mask)
	}
	return removed
}

func retain[T any](rows []T, mask []bool) ([]T, int) {
	out := rows[:0]
	for i := range rows {
		if mask[i] {
			out = append(out, rows[i])
		}
	}
	removed := len(rows) - len(out)
	// Zero the tail so dropped rows don't pin pointer fields.
	var zero T
	for i := len(out); i < len(rows); i++ {
		rows[i] = zero
	}
	return out, removed
}
