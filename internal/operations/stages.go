package operations

import (
	"context"
	"log/slog"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/infrastructure"
	"telcoclean/pkg/contracts/domain"
)

// applyFunc runs one cleaning stage and returns the number of cells or
// rows it touched. Row removals are measured by the step itself.
type applyFunc func(ds *domain.Dataset, corrections *cleaning.Corrections) int

// CleaningStep adapts a cleaning stage to the Step interface.
type CleaningStep struct {
	BaseStage
	apply   applyFunc
	logger  *slog.Logger
	metrics *infrastructure.CleaningMetrics
}

func newCleaningStep(id, name string, deps []string, apply applyFunc, logger *slog.Logger, metrics *infrastructure.CleaningMetrics) *CleaningStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleaningStep{
		BaseStage: NewBaseStage(id, name, deps),
		apply:     apply,
		logger:    logger.With(slog.String("stage", id)),
		metrics:   metrics,
	}
}

// Execute runs the stage on the run's dataset and records per-table removals.
func (s *CleaningStep) Execute(ctx context.Context, state *OperationState) error {
	ds := state.Dataset()
	before := ds.RowCounts()

	changed := s.apply(ds, state.Corrections())

	after := ds.RowCounts()
	removed := 0
	attrs := []any{}
	for _, table := range domain.Tables() {
		n := before[table] - after[table]
		removed += n
		if n > 0 {
			attrs = append(attrs, slog.Int(string(table), n))
		}
		s.metrics.RecordRowsRemoved(ctx, s.ID(), string(table), n)
	}

	if step := state.GetStage(s.ID()); step != nil {
		step.SetMetadata(MetadataRemoved, removed)
		step.SetMetadata(MetadataChanged, changed)
		step.SetMetadata(MetadataRows, after)
	}

	s.logger.InfoContext(ctx, s.Name(),
		slog.Int("removed", removed),
		slog.Int("changed", changed),
		slog.Group("removed_by_table", attrs...))
	return nil
}

// NewCleaningSteps wraps the compiled stages as steps, each depending on
// the one before it, in the order Stages.Ordered defines.
func NewCleaningSteps(stages *cleaning.Stages, logger *slog.Logger, metrics *infrastructure.CleaningMetrics) []Step {
	ordered := stages.Ordered()
	steps := make([]Step, 0, len(ordered))
	var deps []string
	for _, stage := range ordered {
		steps = append(steps, newCleaningStep(stage.ID, stageNames[stage.ID], deps, stage.Apply, logger, metrics))
		deps = []string{stage.ID}
	}
	return steps
}
