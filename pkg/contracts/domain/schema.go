package domain

// TableSchema describes the column layout of one table. Columns are the
// source columns every input must carry; FlagColumns are the audit flags
// appended last, optional on input and always written on output.
type TableSchema struct {
	Name        TableName
	Key         string
	Columns     []string
	FlagColumns []string
}

// Header returns the full output column order.
func (s TableSchema) Header() []string {
	out := make([]string, 0, len(s.Columns)+len(s.FlagColumns))
	out = append(out, s.Columns...)
	return append(out, s.FlagColumns...)
}

// FileName returns the source file name of the table, e.g. billing.csv.
func (s TableSchema) FileName() string {
	return string(s.Name) + ".csv"
}

// CleanFileName returns the persisted file name, e.g. billing_clean.csv.
func (s TableSchema) CleanFileName() string {
	return string(s.Name) + "_clean.csv"
}

var schemas = map[TableName]TableSchema{
	TableSubscribers: {
		Name: TableSubscribers,
		Key:  "subscriber_id",
		Columns: []string{
			"subscriber_id", "city", "plan_type", "plan_name",
			"monthly_charge", "activation_date", "status", "churn_date",
		},
	},
	TableUsage: {
		Name: TableUsage,
		Key:  "usage_id",
		Columns: []string{
			"usage_id", "subscriber_id", "usage_date", "data_usage_gb",
			"call_minutes", "sms_count", "roaming_charges",
		},
		FlagColumns: []string{"outlier_flag"},
	},
	TableBilling: {
		Name: TableBilling,
		Key:  "bill_id",
		Columns: []string{
			"bill_id", "subscriber_id", "bill_date", "due_date",
			"bill_amount", "payment_status", "payment_date",
		},
		FlagColumns: []string{"data_quality_flag"},
	},
	TableTickets: {
		Name: TableTickets,
		Key:  "ticket_id",
		Columns: []string{
			"ticket_id", "subscriber_id", "ticket_date", "ticket_category",
			"ticket_status", "ticket_channel", "resolution_date",
		},
		FlagColumns: []string{"data_quality_flag"},
	},
	TableOutages: {
		Name: TableOutages,
		Key:  "outage_id",
		Columns: []string{
			"outage_id", "affected_city", "outage_type", "outage_start_time",
			"outage_end_time", "outage_duration_mins", "affected_subscribers",
		},
		FlagColumns: []string{"outlier_flag"},
	},
}

// Schema returns the layout of table. ok is false for unknown tables.
func Schema(table TableName) (TableSchema, bool) {
	s, ok := schemas[table]
	return s, ok
}

// MustSchema is Schema for the five known tables; it panics on any other name.
func MustSchema(table TableName) TableSchema {
	s, ok := schemas[table]
	if !ok {
		panic("domain: unknown table " + string(table))
	}
	return s
}
