package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
	"telcoclean/internal/exporter"
	"telcoclean/internal/infrastructure"
	"telcoclean/internal/loader"
	"telcoclean/internal/operations"
	"telcoclean/internal/report"
	"telcoclean/internal/validation"
	"telcoclean/pkg/contracts/domain"
)

// RunResult is the outcome of one complete cleaning run.
type RunResult struct {
	ID       string
	Report   *report.Report
	Cleaned  *domain.Dataset
	Files    []string
	Duration time.Duration
}

// CleaningService runs the pipeline end to end: load, profile, clean,
// validate, report and persist. It keeps the result of the latest
// successful run for the report server.
type CleaningService struct {
	cfg       *config.Config
	loader    *loader.Loader
	manager   *operations.Manager
	validator *validation.DatasetValidator
	exporter  *exporter.Exporter
	metrics   *infrastructure.CleaningMetrics
	logger    *slog.Logger

	running sync.Mutex

	mu     sync.RWMutex
	latest *RunResult
}

// NewCleaningService wires the pipeline components from cfg. providers and
// metrics may be nil.
func NewCleaningService(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, metrics *infrastructure.CleaningMetrics) (*CleaningService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opConfig := operations.NewConfigBuilder().
		WithRunTimeout(cfg.Server.RunTimeout).
		Build()
	tracer := operations.NewOperationTracer(providers, metrics)

	manager, err := operations.NewCleaningManager(
		cleaning.DefaultRules(cfg.Rules), opConfig, logger, tracer, metrics)
	if err != nil {
		return nil, err
	}

	return &CleaningService{
		cfg:       cfg,
		loader:    loader.New(logger, metrics),
		manager:   manager,
		validator: validation.NewDatasetValidator(cfg.Rules, logger),
		exporter:  exporter.New(cfg.Paths.OutputDir, cfg.Export, logger),
		metrics:   metrics,
		logger:    infrastructure.WithComponent(logger, "cleaning_service"),
	}, nil
}

// Run executes one run under id; an empty id gets a fresh uuid. Only one run
// executes at a time: a concurrent call fails with ErrRunInProgress.
func (s *CleaningService) Run(ctx context.Context, id string) (*RunResult, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	if id == "" {
		id = infrastructure.GenerateTraceID()
	}
	if infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, id)
	}

	start := time.Now()
	result, err := s.run(ctx, id)
	s.metrics.RecordRun(ctx, time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Cleaning run failed",
			slog.String("run_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Cleaning run completed",
		slog.String("run_id", id),
		slog.Duration("duration", result.Duration),
		slog.Any("report", result.Report))
	return result, nil
}

func (s *CleaningService) run(ctx context.Context, id string) (*RunResult, error) {
	raw, err := s.loader.Load(ctx, s.cfg.Paths)
	if err != nil {
		return nil, err
	}
	profile := report.NewProfile(raw, s.cfg.Report)

	resp, err := s.manager.Execute(ctx, operations.OperationRequest{ID: id}, raw)
	if err != nil {
		return nil, err
	}

	rep, err := report.FromRun(resp)
	if err != nil {
		return nil, err
	}
	rep.Profile = profile
	rep.Violations = validation.Strings(s.validator.Check(resp.Dataset))

	files, err := s.exporter.Persist(ctx, resp.Dataset, rep)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		ID:      id,
		Report:  rep,
		Cleaned: resp.Dataset,
		Files:   files,
	}, nil
}

// RunJob adapts Run to the job queue.
func (s *CleaningService) RunJob(ctx context.Context, job *operations.Job) error {
	_, err := s.Run(ctx, job.ID)
	return err
}

// Latest returns the result of the latest successful run.
func (s *CleaningService) Latest() (*RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoRun
	}
	return s.latest, nil
}

// TableInfo describes one cleaned table.
type TableInfo struct {
	Table   domain.TableName `json:"table"`
	Rows    int              `json:"rows"`
	Columns []string         `json:"columns"`
}

// Table describes a table of the latest run.
func (s *CleaningService) Table(name string) (*TableInfo, error) {
	schema, ok := domain.Schema(domain.TableName(name))
	if !ok {
		return nil, ErrUnknownTable
	}
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}
	return &TableInfo{
		Table:   schema.Name,
		Rows:    latest.Cleaned.RowCounts()[schema.Name],
		Columns: schema.Header(),
	}, nil
}
