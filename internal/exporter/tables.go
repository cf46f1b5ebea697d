package exporter

import (
	"fmt"

	"telcoclean/pkg/contracts/domain"
)

// TableRecords returns the header and rows of one table in the column
// order of its schema, flag columns last.
func TableRecords(ds *domain.Dataset, table domain.TableName) ([]string, [][]string, error) {
	schema, ok := domain.Schema(table)
	if !ok {
		return nil, nil, fmt.Errorf("unknown table %s", table)
	}

	var rows [][]string
	switch table {
	case domain.TableSubscribers:
		rows = encodeRows(ds.Subscribers, subscriberRow)
	case domain.TableUsage:
		rows = encodeRows(ds.Usage, usageRow)
	case domain.TableBilling:
		rows = encodeRows(ds.Billing, billingRow)
	case domain.TableTickets:
		rows = encodeRows(ds.Tickets, ticketRow)
	case domain.TableOutages:
		rows = encodeRows(ds.Outages, outageRow)
	}
	return schema.Header(), rows, nil
}

func encodeRows[T any](records []T, encode func(T) []string) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, encode(r))
	}
	return rows
}

func subscriberRow(s domain.Subscriber) []string {
	return []string{
		s.SubscriberID,
		s.City,
		s.PlanType,
		s.PlanName,
		formatFloat(s.MonthlyCharge),
		formatTime(s.ActivationDate),
		s.Status,
		formatNullableTime(s.ChurnDate),
	}
}

func usageRow(u domain.UsageRecord) []string {
	return []string{
		u.UsageID,
		u.SubscriberID,
		formatTime(u.UsageDate),
		formatNullableFloat(u.DataUsageGB),
		formatInt(u.CallMinutes),
		formatInt(u.SMSCount),
		formatFloat(u.RoamingCharges),
		formatBool(u.OutlierFlag),
	}
}

func billingRow(b domain.BillingRecord) []string {
	return []string{
		b.BillID,
		b.SubscriberID,
		formatTime(b.BillDate),
		formatTime(b.DueDate),
		formatFloat(b.BillAmount),
		b.PaymentStatus,
		formatNullableTime(b.PaymentDate),
		formatBool(b.DataQualityFlag),
	}
}

func ticketRow(t domain.Ticket) []string {
	return []string{
		t.TicketID,
		t.SubscriberID,
		formatTime(t.TicketDate),
		t.Category,
		t.Status,
		t.Channel,
		formatNullableTime(t.ResolutionDate),
		formatBool(t.DataQualityFlag),
	}
}

func outageRow(o domain.OutageRecord) []string {
	return []string{
		o.OutageID,
		o.AffectedCity,
		o.OutageType,
		formatTime(o.StartTime),
		formatTime(o.EndTime),
		formatNullableFloat(o.DurationMins),
		formatInt(o.AffectedSubscribers),
		formatBool(o.OutlierFlag),
	}
}
