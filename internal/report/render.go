package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

var tableTitles = map[string]string{
	"subscribers":     "Subscribers",
	"usage_records":   "Usage Records",
	"billing":         "Billing Records",
	"tickets":         "Tickets",
	"network_outages": "Network Outages",
}

func title(table string) string {
	if t, ok := tableTitles[table]; ok {
		return t
	}
	return table
}

// WriteText writes the human-readable summary printed by the CLI.
func WriteText(w io.Writer, r *Report) error {
	rule := strings.Repeat("=", 60)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, rule)
	fmt.Fprintln(tw, "DATA CLEANING SUMMARY REPORT")
	fmt.Fprintln(tw, rule)
	if r.RunID != "" {
		fmt.Fprintf(tw, "Run:\t%s\n", r.RunID)
	}

	if p := r.Profile; p != nil {
		fmt.Fprintln(tw, "\nData quality before cleaning:")
		for _, m := range p.Missing {
			fmt.Fprintf(tw, "  Missing %s:\t%d\n", m.Field, m.Count)
		}
		for _, d := range p.Duplicates {
			fmt.Fprintf(tw, "  Duplicate %s:\t%d\n", title(string(d.Table)), d.Rows)
		}
		fmt.Fprintf(tw, "  Usage above %.0f GB:\t%d\n", p.UsageOutlierGB, p.UsageOutliers)
		fmt.Fprintf(tw, "  Bills above %.0f:\t%d\n", p.BillOutlierAmount, p.BillOutliers)
		fmt.Fprintf(tw, "  Negative bills:\t%d\n", p.NegativeBills)
		fmt.Fprintf(tw, "  Impossible ticket dates:\t%d\n", p.ImpossibleTicketDates)
		fmt.Fprintf(tw, "  Usage before activation:\t%d\n", p.UsageBeforeActivation)
		fmt.Fprintf(tw, "  Usage of unknown subscribers:\t%d\n", p.OrphanUsage)
		for _, l := range p.Labels {
			fmt.Fprintf(tw, "  Distinct %s:\t%d\n", l.Field, len(l.Values))
		}
	}

	fmt.Fprintln(tw, "\nFinal record counts:")
	for _, tc := range r.Rows {
		fmt.Fprintf(tw, "  %s:\t%d\n", title(string(tc.Table)), tc.Rows)
	}

	fmt.Fprintln(tw, "\nRemaining data quality flags:")
	for _, f := range r.Flags {
		fmt.Fprintf(tw, "  %s.%s:\t%d\n", f.Table, f.Column, f.Flagged)
	}

	if len(r.Corrections) > 0 {
		fmt.Fprintln(tw, "\nCorrections applied:")
		for _, c := range r.Corrections {
			fmt.Fprintf(tw, "  %s:\t%d\n", c.Rule, c.Count)
		}
	}

	fmt.Fprintln(tw, "\nData quality improvements:")
	for _, item := range r.Checklist {
		mark := "[ ]"
		if item.Done {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "  %s %s\n", mark, item.Name)
	}

	if len(r.Violations) > 0 {
		fmt.Fprintln(tw, "\nInvariant violations:")
		for _, v := range r.Violations {
			fmt.Fprintf(tw, "  ! %s\n", v)
		}
	}

	fmt.Fprintln(tw, rule)
	return tw.Flush()
}
