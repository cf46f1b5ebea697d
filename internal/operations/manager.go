package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/infrastructure"
	"telcoclean/pkg/contracts/domain"
)

// Manager orchestrates pipeline runs
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   *OperationTracer

	// Active operations
	mu         sync.RWMutex
	operations map[string]*OperationState
}

// NewManager creates a new operation manager with dependency injection
func NewManager(registry *Registry, config *Config, logger *slog.Logger, tracer *OperationTracer) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}

	return &Manager{
		registry:   registry,
		config:     config,
		logger:     infrastructure.WithComponent(logger, "operations"),
		tracer:     tracer,
		operations: make(map[string]*OperationState),
	}
}

// NewCleaningManager compiles rules and registers the five cleaning steps.
// An invalid rule set or step graph is rejected here, before any run.
func NewCleaningManager(rules cleaning.Rules, config *Config, logger *slog.Logger, tracer *OperationTracer, metrics *infrastructure.CleaningMetrics) (*Manager, error) {
	stages, err := cleaning.NewStages(rules)
	if err != nil {
		return nil, NewFatalError("invalid cleaning rules", err)
	}

	m := NewManager(nil, config, logger, tracer)
	for _, step := range NewCleaningSteps(stages, logger, metrics) {
		if err := m.RegisterStage(step); err != nil {
			return nil, NewFatalError("failed to register step", err)
		}
	}
	if err := m.registry.ValidateDependencies(); err != nil {
		return nil, NewFatalError("invalid step graph", err)
	}
	return m, nil
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute cleans a copy of ds. The caller's dataset is never modified; the
// cleaned copy is returned in the response.
func (m *Manager) Execute(ctx context.Context, req OperationRequest, ds *domain.Dataset) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, req.ID)
	}
	if ds == nil {
		err := NewValidationError("", "no dataset to clean")
		m.logOperationError(ctx, req.ID, err)
		return nil, err
	}

	if m.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.RunTimeout)
		defer cancel()
	}

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		err = NewFatalError("failed to get dependency order", err)
		m.logOperationError(ctx, req.ID, err)
		return nil, err
	}

	state := NewOperationState(req.ID, ds.Clone())
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	m.storeOperation(state)
	defer m.removeOperation(req.ID)

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID)
	defer span.End()

	m.logOperationStart(ctx, req.ID, len(steps))
	state.Start()

	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation || GetErrorType(err) == ErrorTypeTimeout:
		state.Cancel(err)
		m.logOperationError(ctx, req.ID, err)
	default:
		state.Fail(err)
		m.logOperationError(ctx, req.ID, err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), state.Corrections(), err)
	m.logOperationComplete(ctx, req.ID, state.Duration(), state.GetStatus())

	return m.createResponse(state), err
}

// executeSequential executes steps one by one, checking for cancellation
// between steps
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			if errors.Is(err, context.DeadlineExceeded) {
				return NewTimeoutError(step.ID(), err)
			}
			return NewCancellationError(step.ID(), err)
		}

		m.logStageStart(ctx, state.ID, step.ID(), i+1, len(steps))
		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage executes a single Step
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	if err := step.Validate(state); err != nil {
		stepState.Skip(fmt.Sprintf("validation failed: %v", err))
		return NewValidationError(step.ID(), err.Error())
	}

	stageCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	start := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		return WrapError(err, step.ID(), "step execution failed")
	}

	stepState.Complete()
	m.logStageComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// skipRemaining marks steps that will not run
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// checkDependencies verifies that all dependencies are satisfied
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, "dependency not found")
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency not completed (status: %s)", status))
		}
	}
	return nil
}

// createResponse creates a response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:          state.ID,
		Status:      state.GetStatus(),
		Duration:    state.Duration(),
		Steps:       state.OrderedSteps(),
		Corrections: state.Corrections(),
	}

	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	if resp.Status == OperationStatusCompleted {
		resp.Dataset = state.Dataset()
	}

	return resp
}

// GetOperation returns a snapshot of a running operation
func (m *Manager) GetOperation(id string) (*OperationResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, ErrOperationNotFound
	}

	return m.createResponse(state), nil
}

// ListOperations returns the ids of running operations
func (m *Manager) ListOperations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.operations))
	for id := range m.operations {
		ids = append(ids, id)
	}
	return ids
}

// storeOperation stores a operation state
func (m *Manager) storeOperation(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
}

// removeOperation removes a operation state
func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}
