package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"telcoclean/pkg/contracts/domain"
)

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// At returns the given UTC date and time.
func At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// SampleDataset returns a small dataset carrying one of every defect the
// pipeline repairs. After a full clean with default thresholds it holds:
//
//	subscribers 4, usage_records 5, billing 4, tickets 5, network_outages 3
//	usage outlier flags 1, billing quality flags 2,
//	ticket quality flags 1, outage outlier flags 1
func SampleDataset() *domain.Dataset {
	return &domain.Dataset{
		Subscribers: []domain.Subscriber{
			{SubscriberID: "SUB000001", City: "Dubai", PlanType: "prepaid", PlanName: "Basic", MonthlyCharge: 50, ActivationDate: Day(2024, 1, 1), Status: domain.SubscriberStatusActive},
			{SubscriberID: "SUB000002", City: "DUBAI", PlanType: "Postpaid", PlanName: "Premium", MonthlyCharge: 150, ActivationDate: Day(2024, 6, 1), Status: domain.SubscriberStatusChurned, ChurnDate: domain.Ptr(Day(2025, 1, 1))},
			{SubscriberID: "SUB000003", City: "AbuDhabi", PlanType: "POSTPAID", PlanName: "Business", MonthlyCharge: 200, ActivationDate: Day(2024, 3, 1), Status: domain.SubscriberStatusActive},
			{SubscriberID: "SUB000004", City: "Al Ain", PlanType: "Post-paid", PlanName: "Standard", MonthlyCharge: 120, ActivationDate: Day(2024, 2, 1), Status: domain.SubscriberStatusSuspended},
			{SubscriberID: "SUB000001", City: "Sharjah", PlanType: "Prepaid", PlanName: "Basic", MonthlyCharge: 50, ActivationDate: Day(2024, 1, 1), Status: domain.SubscriberStatusActive},
		},
		Usage: []domain.UsageRecord{
			{UsageID: "USG0000001", SubscriberID: "SUB000001", UsageDate: Day(2025, 1, 10), DataUsageGB: domain.Ptr(10.0), CallMinutes: 30, SMSCount: 5},
			{UsageID: "USG0000002", SubscriberID: "SUB000001", UsageDate: Day(2025, 1, 11), CallMinutes: 12, SMSCount: 1},
			{UsageID: "USG0000003", SubscriberID: "SUB000001", UsageDate: Day(2025, 1, 12), DataUsageGB: domain.Ptr(20.0), CallMinutes: 44, SMSCount: 0},
			{UsageID: "USG0000004", SubscriberID: "SUB000002", UsageDate: Day(2024, 5, 1), DataUsageGB: domain.Ptr(5.0), CallMinutes: 8, SMSCount: 2},
			{UsageID: "USG0000005", SubscriberID: "SUB000003", UsageDate: Day(2025, 1, 10), CallMinutes: 3, SMSCount: 0},
			{UsageID: "USG0000006", SubscriberID: "SUB000004", UsageDate: Day(2025, 1, 10), DataUsageGB: domain.Ptr(650.0), CallMinutes: 90, SMSCount: 7, RoamingCharges: 12.5},
			{UsageID: "USG0000007", SubscriberID: "SUB000999", UsageDate: Day(2025, 1, 10), DataUsageGB: domain.Ptr(3.0)},
			{UsageID: "USG0000001", SubscriberID: "SUB000001", UsageDate: Day(2025, 1, 10), DataUsageGB: domain.Ptr(99.0)},
		},
		Billing: []domain.BillingRecord{
			{BillID: "BILL0000001", SubscriberID: "SUB000001", BillDate: Day(2025, 1, 1), DueDate: Day(2025, 1, 15), BillAmount: 100, PaymentStatus: domain.PaymentStatusPaid, PaymentDate: domain.Ptr(Day(2025, 1, 10))},
			{BillID: "BILL0000002", SubscriberID: "SUB000001", BillDate: Day(2025, 2, 1), DueDate: Day(2025, 2, 15), BillAmount: 2500, PaymentStatus: domain.PaymentStatusOverdue},
			{BillID: "BILL0000003", SubscriberID: "SUB000002", BillDate: Day(2025, 1, 1), DueDate: Day(2025, 1, 15), BillAmount: -50, PaymentStatus: domain.PaymentStatusPaid},
			{BillID: "BILL0000004", SubscriberID: "SUB000003", BillDate: Day(2025, 1, 1), DueDate: Day(2025, 1, 15), BillAmount: 300, PaymentStatus: domain.PaymentStatusPaid},
			{BillID: "BILL0000005", SubscriberID: "SUB000004", BillDate: Day(2025, 1, 1), DueDate: Day(2025, 1, 15), BillAmount: 80, PaymentStatus: domain.PaymentStatusPending},
			{BillID: "BILL0000001", SubscriberID: "SUB000001", BillDate: Day(2025, 1, 1), DueDate: Day(2025, 1, 15), BillAmount: 999, PaymentStatus: domain.PaymentStatusPaid},
		},
		Tickets: []domain.Ticket{
			{TicketID: "TKT0000001", SubscriberID: "SUB000001", TicketDate: Day(2025, 1, 10), Category: "Billing", Status: "Resolved", Channel: "App", ResolutionDate: domain.Ptr(Day(2025, 1, 12))},
			{TicketID: "TKT0000002", SubscriberID: "SUB000002", TicketDate: Day(2025, 1, 10), Category: "Network", Status: "resolved", Channel: "Call", ResolutionDate: domain.Ptr(Day(2025, 1, 5))},
			{TicketID: "TKT0000003", SubscriberID: "SUB000003", TicketDate: Day(2025, 1, 11), Category: "Network", Status: "Closed", Channel: "Store"},
			{TicketID: "TKT0000004", SubscriberID: "SUB000004", TicketDate: Day(2025, 1, 12), Category: "Plan Change", Status: "OPEN", Channel: "App"},
			{TicketID: "TKT0000005", SubscriberID: "SUB000001", TicketDate: Day(2025, 1, 13), Category: "Roaming", Status: domain.TicketStatusEscalated, Channel: "Call"},
		},
		Outages: []domain.OutageRecord{
			{OutageID: "OUT00001", AffectedCity: "Dubai", OutageType: "Fiber Cut", StartTime: At(2025, 1, 1, 10, 0), EndTime: At(2025, 1, 1, 12, 0), DurationMins: domain.Ptr(120.0), AffectedSubscribers: 1500},
			{OutageID: "OUT00002", AffectedCity: "Abu Dhabi", OutageType: "Power", StartTime: At(2025, 1, 2, 8, 0), EndTime: At(2025, 1, 3, 8, 30), AffectedSubscribers: 9000},
			{OutageID: "OUT00003", AffectedCity: "Dubai", OutageType: "Maintenance", StartTime: At(2025, 1, 4, 0, 0), EndTime: At(2025, 1, 4, 0, 45), DurationMins: domain.Ptr(45.0), AffectedSubscribers: 200},
			{OutageID: "OUT00001", AffectedCity: "Dubai", OutageType: "Fiber Cut", StartTime: At(2025, 1, 1, 10, 0), EndTime: At(2025, 1, 1, 12, 0), DurationMins: domain.Ptr(120.0), AffectedSubscribers: 1500},
		},
	}
}

// SampleCSV returns the source files of SampleDataset keyed by file name,
// written the way pandas writes them: empty cells for missing values and
// "2006-01-02 15:04:05" timestamps.
func SampleCSV() map[string]string {
	return map[string]string{
		"subscribers.csv": `subscriber_id,city,plan_type,plan_name,monthly_charge,activation_date,status,churn_date
SUB000001,Dubai,prepaid,Basic,50.0,2024-01-01,Active,
SUB000002,DUBAI,Postpaid,Premium,150.0,2024-06-01,Churned,2025-01-01
SUB000003,AbuDhabi,POSTPAID,Business,200.0,2024-03-01,Active,
SUB000004,Al Ain,Post-paid,Standard,120.0,2024-02-01,Suspended,
SUB000001,Sharjah,Prepaid,Basic,50.0,2024-01-01,Active,
`,
		"usage_records.csv": `usage_id,subscriber_id,usage_date,data_usage_gb,call_minutes,sms_count,roaming_charges
USG0000001,SUB000001,2025-01-10,10.0,30,5,0.0
USG0000002,SUB000001,2025-01-11,,12,1,0.0
USG0000003,SUB000001,2025-01-12,20.0,44,0,0.0
USG0000004,SUB000002,2024-05-01,5.0,8,2,0.0
USG0000005,SUB000003,2025-01-10,,3,0,0.0
USG0000006,SUB000004,2025-01-10,650.0,90,7,12.5
USG0000007,SUB000999,2025-01-10,3.0,0,0,0.0
USG0000001,SUB000001,2025-01-10,99.0,0,0,0.0
`,
		"billing.csv": `bill_id,subscriber_id,bill_date,due_date,bill_amount,payment_status,payment_date
BILL0000001,SUB000001,2025-01-01,2025-01-15,100.0,Paid,2025-01-10
BILL0000002,SUB000001,2025-02-01,2025-02-15,2500.0,Overdue,
BILL0000003,SUB000002,2025-01-01,2025-01-15,-50.0,Paid,
BILL0000004,SUB000003,2025-01-01,2025-01-15,300.0,Paid,
BILL0000005,SUB000004,2025-01-01,2025-01-15,80.0,Pending,
BILL0000001,SUB000001,2025-01-01,2025-01-15,999.0,Paid,
`,
		"tickets.csv": `ticket_id,subscriber_id,ticket_date,ticket_category,ticket_status,ticket_channel,resolution_date
TKT0000001,SUB000001,2025-01-10,Billing,Resolved,App,2025-01-12
TKT0000002,SUB000002,2025-01-10,Network,resolved,Call,2025-01-05
TKT0000003,SUB000003,2025-01-11,Network,Closed,Store,
TKT0000004,SUB000004,2025-01-12,Plan Change,OPEN,App,
TKT0000005,SUB000001,2025-01-13,Roaming,Escalated,Call,
`,
		"network_outages.csv": `outage_id,affected_city,outage_type,outage_start_time,outage_end_time,outage_duration_mins,affected_subscribers
OUT00001,Dubai,Fiber Cut,2025-01-01 10:00:00,2025-01-01 12:00:00,120.0,1500
OUT00002,Abu Dhabi,Power,2025-01-02 08:00:00,2025-01-03 08:30:00,,9000
OUT00003,Dubai,Maintenance,2025-01-04 00:00:00,2025-01-04 00:45:00,45.0,200
OUT00001,Dubai,Fiber Cut,2025-01-01 10:00:00,2025-01-01 12:00:00,120.0,1500
`,
	}
}

// WriteFiles writes name→content pairs into dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// WriteSampleCSV writes SampleCSV into a fresh temp dir and returns it.
func WriteSampleCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, SampleCSV())
	return dir
}
