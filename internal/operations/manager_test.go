package operations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/cleaning"
	"telcoclean/internal/config"
	"telcoclean/internal/infrastructure"
	"telcoclean/internal/shared/testutil"
	"telcoclean/pkg/contracts/domain"
)

func newTestManager(t *testing.T) (*Manager, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	m, err := NewCleaningManager(cleaning.DefaultRules(config.Default().Rules), NewConfig(), logger, nil, nil)
	require.NoError(t, err)
	return m, handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubStep is a configurable Step for driver tests.
type stubStep struct {
	BaseStage
	run func(ctx context.Context, state *OperationState) error
}

func newStubStep(id string, deps []string, run func(ctx context.Context, state *OperationState) error) *stubStep {
	return &stubStep{BaseStage: NewBaseStage(id, id, deps), run: run}
}

func (s *stubStep) Execute(ctx context.Context, state *OperationState) error {
	if s.run == nil {
		return nil
	}
	return s.run(ctx, state)
}

func TestManager_ExecuteCleansSample(t *testing.T) {
	m, handler := newTestManager(t)
	input := testutil.SampleDataset()

	resp, err := m.Execute(context.Background(), OperationRequest{}, input)
	require.NoError(t, err)

	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.Dataset)
	assert.Equal(t, map[domain.TableName]int{
		domain.TableSubscribers: 4,
		domain.TableUsage:       5,
		domain.TableBilling:     4,
		domain.TableTickets:     5,
		domain.TableOutages:     3,
	}, resp.Dataset.RowCounts())

	require.Len(t, resp.Steps, 5)
	names := make([]string, 0, len(resp.Steps))
	for _, s := range resp.Steps {
		assert.Equal(t, StepStatusCompleted, s.Status, s.ID)
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		StageNameDedup, StageNameCanonical, StageNameMissing, StageNameOutliers, StageNameConsistency,
	}, names)

	assert.Equal(t, 1, resp.Corrections.Count("billing.bill_amount.negative_removed"))
	testutil.AssertNoErrors(t, handler)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, StageNameDedup)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, StageNameConsistency)
}

func TestManager_ExecuteLeavesInputUntouched(t *testing.T) {
	m, _ := newTestManager(t)
	input := testutil.SampleDataset()
	before := testutil.SampleDataset()

	resp, err := m.Execute(context.Background(), OperationRequest{}, input)
	require.NoError(t, err)

	assert.Equal(t, before, input)
	assert.NotEqual(t, input.RowCounts(), resp.Dataset.RowCounts())
}

func TestManager_StepMetadata(t *testing.T) {
	m, _ := newTestManager(t)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-1"}, testutil.SampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.ID)

	dedup := resp.Steps[0]
	assert.Equal(t, StageIDDedup, dedup.ID)
	assert.Greater(t, dedup.Metadata[MetadataRemoved], 0)

	consistency := resp.Steps[4]
	assert.Equal(t, StageIDConsistency, consistency.ID)
	assert.Equal(t, resp.Dataset.RowCounts(), consistency.Metadata[MetadataRows])
}

func TestManager_TraceID(t *testing.T) {
	var seen string
	m := NewManager(nil, NewConfig(), discardLogger(), nil)
	require.NoError(t, m.RegisterStage(newStubStep("trace", nil, func(ctx context.Context, _ *OperationState) error {
		seen = infrastructure.GetTraceID(ctx)
		return nil
	})))

	resp, err := m.Execute(context.Background(), OperationRequest{}, &domain.Dataset{})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, seen)

	ctx := infrastructure.WithTraceID(context.Background(), "caller-trace")
	resp, err = m.Execute(ctx, OperationRequest{}, &domain.Dataset{})
	require.NoError(t, err)
	assert.NotEqual(t, "caller-trace", resp.ID)
	assert.Equal(t, "caller-trace", seen)
}

func TestManager_NilDataset(t *testing.T) {
	m, _ := newTestManager(t)

	resp, err := m.Execute(context.Background(), OperationRequest{}, nil)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
}

func TestManager_CancelledContext(t *testing.T) {
	m, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := m.Execute(ctx, OperationRequest{}, testutil.SampleDataset())
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Nil(t, resp.Dataset)
	for _, s := range resp.Steps {
		assert.Equal(t, StepStatusSkipped, s.Status)
	}
}

func TestManager_CancelBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(nil, NewConfig(), discardLogger(), nil)
	require.NoError(t, m.RegisterStage(newStubStep("first", nil, func(context.Context, *OperationState) error {
		cancel()
		return nil
	})))
	require.NoError(t, m.RegisterStage(newStubStep("second", []string{"first"}, nil)))

	resp, err := m.Execute(ctx, OperationRequest{}, &domain.Dataset{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StepStatusCompleted, resp.Steps[0].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[1].Status)
}

func TestManager_Timeout(t *testing.T) {
	cfg := NewConfigBuilder().WithRunTimeout(10 * time.Millisecond).Build()
	m := NewManager(nil, cfg, discardLogger(), nil)
	require.NoError(t, m.RegisterStage(newStubStep("slow", nil, func(ctx context.Context, _ *OperationState) error {
		<-ctx.Done()
		return nil
	})))
	require.NoError(t, m.RegisterStage(newStubStep("after", []string{"slow"}, nil)))

	resp, err := m.Execute(context.Background(), OperationRequest{}, &domain.Dataset{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.Equal(t, OperationStatusCancelled, resp.Status)
}

func TestManager_StepFailureSkipsRest(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(nil, NewConfig(), discardLogger(), nil)
	require.NoError(t, m.RegisterStage(newStubStep("a", nil, func(context.Context, *OperationState) error { return boom })))
	require.NoError(t, m.RegisterStage(newStubStep("b", []string{"a"}, nil)))

	resp, err := m.Execute(context.Background(), OperationRequest{}, &domain.Dataset{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Contains(t, resp.Error, "boom")
	assert.Equal(t, StepStatusFailed, resp.Steps[0].Status)
	assert.Equal(t, "boom", resp.Steps[0].Error)
	assert.Equal(t, StepStatusSkipped, resp.Steps[1].Status)
	assert.Empty(t, m.ListOperations())
}

func TestNewCleaningManager_InvalidRules(t *testing.T) {
	rules := cleaning.DefaultRules(config.Default().Rules)
	rules.Outliers[0].Threshold = 0

	_, err := NewCleaningManager(rules, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeFatal, GetErrorType(err))
}

func TestManager_GetOperationUnknown(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.GetOperation("missing")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}
