package loader

import (
	"context"
	"strings"

	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

// rawTable is a table as read from its source: a header and the data rows
// below it. firstLine is the 1-based source line of rows[0].
type rawTable struct {
	table     domain.TableName
	source    string
	header    []string
	rows      [][]string
	firstLine int
	serial    bool
}

// headerIndex maps column names to positions and checks that every
// required column of the table is present.
func headerIndex(schema domain.TableSchema, header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = trimBOM(h)
		}
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range schema.Columns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.NewSchemaError(string(schema.Name), col)
		}
	}
	return index, nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

// decodeRows turns every row of raw into T. The first bad cell aborts the
// table with a LoadError naming the source.
func decodeRows[T any](ctx context.Context, raw rawTable, decode func(record) (T, error)) ([]T, error) {
	schema := domain.MustSchema(raw.table)
	index, err := headerIndex(schema, raw.header)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw.rows))
	for i, cells := range raw.rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blankRow(cells) {
			continue
		}
		v, err := decode(record{
			table:  raw.table,
			line:   raw.firstLine + i,
			cells:  cells,
			index:  index,
			serial: raw.serial,
		})
		if err != nil {
			return nil, apperrors.NewLoadError(raw.source, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func decodeSubscriber(r record) (domain.Subscriber, error) {
	var (
		s   domain.Subscriber
		err error
	)
	s.SubscriberID = r.str("subscriber_id")
	s.City = r.str("city")
	s.PlanType = r.str("plan_type")
	s.PlanName = r.str("plan_name")
	s.Status = r.str("status")
	if s.MonthlyCharge, err = r.float("monthly_charge"); err != nil {
		return s, err
	}
	if s.ActivationDate, err = r.time("activation_date"); err != nil {
		return s, err
	}
	if s.ChurnDate, err = r.nullableTime("churn_date"); err != nil {
		return s, err
	}
	return s, nil
}

func decodeUsage(r record) (domain.UsageRecord, error) {
	var (
		u   domain.UsageRecord
		err error
	)
	u.UsageID = r.str("usage_id")
	u.SubscriberID = r.str("subscriber_id")
	if u.UsageDate, err = r.time("usage_date"); err != nil {
		return u, err
	}
	if u.DataUsageGB, err = r.nullableFloat("data_usage_gb"); err != nil {
		return u, err
	}
	if u.CallMinutes, err = r.int("call_minutes"); err != nil {
		return u, err
	}
	if u.SMSCount, err = r.int("sms_count"); err != nil {
		return u, err
	}
	if u.RoamingCharges, err = r.float("roaming_charges"); err != nil {
		return u, err
	}
	if u.OutlierFlag, err = r.flag("outlier_flag"); err != nil {
		return u, err
	}
	return u, nil
}

func decodeBilling(r record) (domain.BillingRecord, error) {
	var (
		b   domain.BillingRecord
		err error
	)
	b.BillID = r.str("bill_id")
	b.SubscriberID = r.str("subscriber_id")
	b.PaymentStatus = r.str("payment_status")
	if b.BillDate, err = r.time("bill_date"); err != nil {
		return b, err
	}
	if b.DueDate, err = r.time("due_date"); err != nil {
		return b, err
	}
	if b.BillAmount, err = r.float("bill_amount"); err != nil {
		return b, err
	}
	if b.PaymentDate, err = r.nullableTime("payment_date"); err != nil {
		return b, err
	}
	if b.DataQualityFlag, err = r.flag("data_quality_flag"); err != nil {
		return b, err
	}
	return b, nil
}

func decodeTicket(r record) (domain.Ticket, error) {
	var (
		t   domain.Ticket
		err error
	)
	t.TicketID = r.str("ticket_id")
	t.SubscriberID = r.str("subscriber_id")
	t.Category = r.str("ticket_category")
	t.Status = r.str("ticket_status")
	t.Channel = r.str("ticket_channel")
	if t.TicketDate, err = r.time("ticket_date"); err != nil {
		return t, err
	}
	if t.ResolutionDate, err = r.nullableTime("resolution_date"); err != nil {
		return t, err
	}
	if t.DataQualityFlag, err = r.flag("data_quality_flag"); err != nil {
		return t, err
	}
	return t, nil
}

func decodeOutage(r record) (domain.OutageRecord, error) {
	var (
		o   domain.OutageRecord
		err error
	)
	o.OutageID = r.str("outage_id")
	o.AffectedCity = r.str("affected_city")
	o.OutageType = r.str("outage_type")
	if o.StartTime, err = r.time("outage_start_time"); err != nil {
		return o, err
	}
	if o.EndTime, err = r.time("outage_end_time"); err != nil {
		return o, err
	}
	if o.DurationMins, err = r.nullableFloat("outage_duration_mins"); err != nil {
		return o, err
	}
	if o.AffectedSubscribers, err = r.int("affected_subscribers"); err != nil {
		return o, err
	}
	if o.OutlierFlag, err = r.flag("outlier_flag"); err != nil {
		return o, err
	}
	return o, nil
}
