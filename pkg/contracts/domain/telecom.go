package domain

import (
	"time"
)

// TableName identifies one of the five tables of the operational dataset.
type TableName string

const (
	TableSubscribers TableName = "subscribers"
	TableUsage       TableName = "usage_records"
	TableBilling     TableName = "billing"
	TableTickets     TableName = "tickets"
	TableOutages     TableName = "network_outages"
)

// Tables returns the table names in load and persist order.
func Tables() []TableName {
	return []TableName{TableSubscribers, TableUsage, TableBilling, TableTickets, TableOutages}
}

// Subscriber statuses
const (
	SubscriberStatusActive    = "Active"
	SubscriberStatusSuspended = "Suspended"
	SubscriberStatusChurned   = "Churned"
)

// Payment statuses
const (
	PaymentStatusPaid    = "Paid"
	PaymentStatusOverdue = "Overdue"
	PaymentStatusPartial = "Partial"
	PaymentStatusPending = "Pending"
)

// Ticket statuses
const (
	TicketStatusResolved   = "Resolved"
	TicketStatusInProgress = "In Progress"
	TicketStatusOpen       = "Open"
	TicketStatusEscalated  = "Escalated"
)

// Subscriber is a single line in the subscriber master table.
// ChurnDate is only expected when Status is Churned.
type Subscriber struct {
	SubscriberID   string     `json:"subscriber_id" validate:"required"`
	City           string     `json:"city"`
	PlanType       string     `json:"plan_type"`
	PlanName       string     `json:"plan_name"`
	MonthlyCharge  float64    `json:"monthly_charge"`
	ActivationDate time.Time  `json:"activation_date"`
	Status         string     `json:"status"`
	ChurnDate      *time.Time `json:"churn_date,omitempty"`
}

// UsageRecord is one day of usage for a subscriber.
// DataUsageGB is nil when the source cell was empty.
type UsageRecord struct {
	UsageID        string    `json:"usage_id" validate:"required"`
	SubscriberID   string    `json:"subscriber_id" validate:"required"`
	UsageDate      time.Time `json:"usage_date"`
	DataUsageGB    *float64  `json:"data_usage_gb" validate:"required"`
	CallMinutes    int64     `json:"call_minutes"`
	SMSCount       int64     `json:"sms_count"`
	RoamingCharges float64   `json:"roaming_charges"`
	OutlierFlag    bool      `json:"outlier_flag"`
}

// BillingRecord is a monthly bill issued to a subscriber.
type BillingRecord struct {
	BillID          string     `json:"bill_id" validate:"required"`
	SubscriberID    string     `json:"subscriber_id" validate:"required"`
	BillDate        time.Time  `json:"bill_date"`
	DueDate         time.Time  `json:"due_date"`
	BillAmount      float64    `json:"bill_amount" validate:"gte=0"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	DataQualityFlag bool       `json:"data_quality_flag"`
}

// Ticket is a customer support ticket.
type Ticket struct {
	TicketID        string     `json:"ticket_id" validate:"required"`
	SubscriberID    string     `json:"subscriber_id" validate:"required"`
	TicketDate      time.Time  `json:"ticket_date"`
	Category        string     `json:"ticket_category"`
	Status          string     `json:"ticket_status"`
	Channel         string     `json:"ticket_channel"`
	ResolutionDate  *time.Time `json:"resolution_date,omitempty"`
	DataQualityFlag bool       `json:"data_quality_flag"`
}

// OutageRecord is a network outage affecting one city.
// DurationMins is nil when the source cell was empty.
type OutageRecord struct {
	OutageID            string    `json:"outage_id" validate:"required"`
	AffectedCity        string    `json:"affected_city"`
	OutageType          string    `json:"outage_type"`
	StartTime           time.Time `json:"outage_start_time"`
	EndTime             time.Time `json:"outage_end_time"`
	DurationMins        *float64  `json:"outage_duration_mins" validate:"required"`
	AffectedSubscribers int64     `json:"affected_subscribers"`
	OutlierFlag         bool      `json:"outlier_flag"`
}

// Dataset is the five-table aggregate passed between pipeline stages.
// A stage owns the Dataset it receives until it returns it.
type Dataset struct {
	Subscribers []Subscriber    `json:"subscribers" validate:"dive"`
	Usage       []UsageRecord   `json:"usage_records" validate:"dive"`
	Billing     []BillingRecord `json:"billing" validate:"dive"`
	Tickets     []Ticket        `json:"tickets" validate:"dive"`
	Outages     []OutageRecord  `json:"network_outages" validate:"dive"`
}

// RowCounts returns the number of rows per table.
func (d *Dataset) RowCounts() map[TableName]int {
	return map[TableName]int{
		TableSubscribers: len(d.Subscribers),
		TableUsage:       len(d.Usage),
		TableBilling:     len(d.Billing),
		TableTickets:     len(d.Tickets),
		TableOutages:     len(d.Outages),
	}
}

// Clone returns a deep copy. Pointer fields are re-allocated so that
// the copy shares no memory with the receiver.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}

	out := &Dataset{
		Subscribers: make([]Subscriber, len(d.Subscribers)),
		Usage:       make([]UsageRecord, len(d.Usage)),
		Billing:     make([]BillingRecord, len(d.Billing)),
		Tickets:     make([]Ticket, len(d.Tickets)),
		Outages:     make([]OutageRecord, len(d.Outages)),
	}

	for i, s := range d.Subscribers {
		s.ChurnDate = clonePtr(s.ChurnDate)
		out.Subscribers[i] = s
	}
	for i, u := range d.Usage {
		u.DataUsageGB = clonePtr(u.DataUsageGB)
		out.Usage[i] = u
	}
	for i, b := range d.Billing {
		b.PaymentDate = clonePtr(b.PaymentDate)
		out.Billing[i] = b
	}
	for i, t := range d.Tickets {
		t.ResolutionDate = clonePtr(t.ResolutionDate)
		out.Tickets[i] = t
	}
	for i, o := range d.Outages {
		o.DurationMins = clonePtr(o.DurationMins)
		out.Outages[i] = o
	}

	return out
}

// Ptr returns a pointer to v. Used for nullable fields.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
