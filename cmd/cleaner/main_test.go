package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "telcoclean/internal/errors"
	"telcoclean/internal/shared/testutil"
)

// isolate keeps the logs directory out of the package dir.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("TELCO_PATHS_LOGS_DIR", t.TempDir())
}

func TestRun_Success(t *testing.T) {
	isolate(t)
	in := testutil.WriteSampleCSV(t)
	out := filepath.Join(t.TempDir(), "clean")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-in", in, "-out", out}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.Contains(t, stdout.String(), "DATA CLEANING SUMMARY REPORT")
	assert.Contains(t, stdout.String(), "subscribers_clean.csv")
	assert.FileExists(t, filepath.Join(out, "billing_clean.csv"))
	assert.NoFileExists(t, filepath.Join(out, "telecom_clean.xlsx"))
}

func TestRun_WorkbookExport(t *testing.T) {
	isolate(t)
	in := testutil.WriteSampleCSV(t)
	out := filepath.Join(t.TempDir(), "clean")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-in", in, "-out", out, "-xlsx"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.FileExists(t, filepath.Join(out, "telecom_clean.xlsx"))
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) []string
		want  int
	}{
		{
			name: "missing input directory",
			setup: func(t *testing.T) []string {
				return []string{"-in", filepath.Join(t.TempDir(), "missing"), "-out", t.TempDir()}
			},
			want: exitInput,
		},
		{
			name: "missing column",
			setup: func(t *testing.T) []string {
				in := testutil.WriteSampleCSV(t)
				testutil.WriteFiles(t, in, map[string]string{"billing.csv": "bill_id,subscriber_id\nB1,SUB000001\n"})
				return []string{"-in", in, "-out", t.TempDir()}
			},
			want: exitInput,
		},
		{
			name: "output is a file",
			setup: func(t *testing.T) []string {
				blocker := filepath.Join(t.TempDir(), "blocker")
				require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
				return []string{"-in", testutil.WriteSampleCSV(t), "-out", blocker}
			},
			want: exitPersist,
		},
		{
			name: "unknown flag",
			setup: func(t *testing.T) []string {
				return []string{"-bogus"}
			},
			want: exitInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.setup(t), &stdout, &stderr)
			assert.Equal(t, tt.want, code)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestExitCode(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "load", err: apperrors.NewLoadError("usage.csv", cause), want: exitInput},
		{name: "schema", err: apperrors.NewSchemaError("billing", "bill_amount"), want: exitInput},
		{name: "parsing", err: apperrors.NewParsingError("bad date", cause), want: exitInput},
		{name: "config", err: apperrors.NewConfigError("bad config", cause), want: exitInput},
		{name: "storage", err: apperrors.NewStorageError("write failed", cause), want: exitPersist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
