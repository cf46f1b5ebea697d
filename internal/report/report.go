// Package report summarises a cleaning run for its consumers: the CLI
// summary, the report server and the workbook export.
//
// Profile describes the raw dataset before cleaning. Report describes the
// cleaned dataset: final row counts, flagged rows per flag column, the
// remediation checklist and the correction audit trail. Both are pure reads.
package report

import (
	"fmt"
	"log/slog"
	"time"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/operations"
	"telcoclean/pkg/contracts/domain"
)

// Checklist lists the remediation categories in pipeline order.
var Checklist = []string{
	operations.StageNameDedup,
	operations.StageNameCanonical,
	operations.StageNameMissing,
	operations.StageNameOutliers,
	operations.StageNameConsistency,
}

// TableCount is the row count of one table.
type TableCount struct {
	Table domain.TableName `json:"table"`
	Rows  int              `json:"rows"`
}

// FlagCount is the number of rows with one flag column set.
type FlagCount struct {
	Table   domain.TableName `json:"table"`
	Column  string           `json:"column"`
	Flagged int              `json:"flagged"`
}

// ChecklistItem is one remediation category and whether its stage completed.
type ChecklistItem struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Report is the post-cleaning summary of a run.
type Report struct {
	RunID       string                `json:"run_id,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
	Rows        []TableCount          `json:"rows"`
	Flags       []FlagCount           `json:"flags"`
	Checklist   []ChecklistItem       `json:"checklist"`
	Corrections []cleaning.Correction `json:"corrections"`
	Violations  []string              `json:"violations"`
	Profile     *Profile              `json:"profile,omitempty"`
}

// Emit builds the report of ds. completed holds the names of the stages that
// ran to completion; corrections may be nil.
func Emit(ds *domain.Dataset, completed []string, corrections *cleaning.Corrections) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Rows:        tableCounts(ds.RowCounts()),
		Corrections: corrections.List(),
		Violations:  []string{},
	}
	if r.Corrections == nil {
		r.Corrections = []cleaning.Correction{}
	}

	for _, ref := range cleaning.FlagColumns() {
		r.Flags = append(r.Flags, FlagCount{
			Table:   ref.Table,
			Column:  ref.Column,
			Flagged: cleaning.CountFlags(ds, ref),
		})
	}

	done := make(map[string]bool, len(completed))
	for _, name := range completed {
		done[name] = true
	}
	for _, name := range Checklist {
		r.Checklist = append(r.Checklist, ChecklistItem{Name: name, Done: done[name]})
	}

	return r
}

// FromRun builds the report of a completed pipeline run.
func FromRun(resp *operations.OperationResponse) (*Report, error) {
	if resp == nil || resp.Dataset == nil {
		return nil, fmt.Errorf("run has no cleaned dataset")
	}

	var completed []string
	for _, step := range resp.Steps {
		if step.Status == operations.StepStatusCompleted {
			completed = append(completed, step.Name)
		}
	}

	r := Emit(resp.Dataset, completed, resp.Corrections)
	r.RunID = resp.ID
	return r, nil
}

// Complete reports whether every checklist item is done.
func (r *Report) Complete() bool {
	for _, item := range r.Checklist {
		if !item.Done {
			return false
		}
	}
	return len(r.Checklist) > 0
}

// FlagTotal returns the number of flagged rows across all flag columns.
func (r *Report) FlagTotal() int {
	total := 0
	for _, f := range r.Flags {
		total += f.Flagged
	}
	return total
}

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	rows := make([]slog.Attr, 0, len(r.Rows))
	for _, tc := range r.Rows {
		rows = append(rows, slog.Int(string(tc.Table), tc.Rows))
	}
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.Any("rows", slog.GroupValue(rows...)),
		slog.Int("flagged", r.FlagTotal()),
		slog.Int("violations", len(r.Violations)),
		slog.Bool("complete", r.Complete()),
	)
}

func tableCounts(counts map[domain.TableName]int) []TableCount {
	out := make([]TableCount, 0, len(counts))
	for _, table := range domain.Tables() {
		out = append(out, TableCount{Table: table, Rows: counts[table]})
	}
	return out
}
