package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telcoclean/internal/config"
	apperrors "telcoclean/internal/errors"
	"telcoclean/internal/shared/testutil"
	"telcoclean/pkg/contracts/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.InputDir = testutil.WriteSampleCSV(t)
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "clean")
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) *CleaningService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewCleaningService(cfg, logger, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestCleaningService_Run(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)

	_, err := svc.Latest()
	assert.ErrorIs(t, err, ErrNoRun)

	result, err := svc.Run(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, result.ID, result.Report.RunID)
	assert.Len(t, result.Files, 5)
	assert.True(t, result.Report.Complete())
	assert.Empty(t, result.Report.Violations)
	require.NotNil(t, result.Report.Profile)
	assert.Equal(t, 4, result.Report.Profile.DuplicateTotal())

	assert.Equal(t, map[domain.TableName]int{
		domain.TableSubscribers: 4,
		domain.TableUsage:       5,
		domain.TableBilling:     4,
		domain.TableTickets:     5,
		domain.TableOutages:     3,
	}, result.Cleaned.RowCounts())

	for _, f := range result.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Same(t, result, latest)
}

func TestCleaningService_RunWithID(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	result, err := svc.Run(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", result.ID)
}

func TestCleaningService_LoadFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.InputDir = filepath.Join(t.TempDir(), "missing")
	svc := newTestService(t, cfg)

	_, err := svc.Run(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))

	_, err = svc.Latest()
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestCleaningService_SchemaFailure(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteFiles(t, cfg.Paths.InputDir, map[string]string{
		"billing.csv": "bill_id,subscriber_id\nBILL0000001,SUB000001\n",
	})
	svc := newTestService(t, cfg)

	_, err := svc.Run(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestCleaningService_PersistFailure(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	cfg.Paths.OutputDir = filepath.Join(blocker, "clean")
	svc := newTestService(t, cfg)

	_, err := svc.Run(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestCleaningService_RunInProgress(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	svc.running.Lock()
	_, err := svc.Run(context.Background(), "")
	svc.running.Unlock()
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestCleaningService_Table(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	_, err := svc.Table(string(domain.TableBilling))
	assert.ErrorIs(t, err, ErrNoRun)

	_, err = svc.Run(context.Background(), "")
	require.NoError(t, err)

	info, err := svc.Table(string(domain.TableBilling))
	require.NoError(t, err)
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, "data_quality_flag", info.Columns[len(info.Columns)-1])

	_, err = svc.Table("payments")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestHealthService(t *testing.T) {
	svc := newTestService(t, testConfig(t))
	health := NewHealthService("test", "", svc, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "ok", health.HealthCheck(ctx).Status)
	assert.Equal(t, "not_ready", health.ReadinessCheck(ctx).Status)

	_, err := svc.Run(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "ready", health.ReadinessCheck(ctx).Status)

	assert.Equal(t, "test", health.Version()["version"])
}
