package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeConfig, Message: "usage cap must be positive"},
			wantMessage: "[CONFIG] usage cap must be positive",
		},
		{
			name:        "error with cause",
			appError:    &AppError{Type: ErrTypeStorage, Message: "write failed", Cause: fmt.Errorf("disk full")},
			wantMessage: "[STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestNewLoadError(t *testing.T) {
	err := NewLoadError("billing.csv", os.ErrNotExist)

	assert.Equal(t, ErrTypeLoad, err.Type)
	assert.Equal(t, "billing.csv", err.Context["source"])
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "failed to load billing.csv")
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("usage_records", "usage_date")

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Equal(t, "usage_records", err.Context["table"])
	assert.Equal(t, "usage_date", err.Context["column"])
	assert.Nil(t, err.Unwrap())
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("run aborted: %w", NewSchemaError("tickets", "ticket_id"))

	assert.True(t, IsType(wrapped, ErrTypeSchema))
	assert.False(t, IsType(wrapped, ErrTypeLoad))
	assert.False(t, IsType(errors.New("plain"), ErrTypeSchema))
	assert.False(t, IsType(nil, ErrTypeSchema))
}

func TestAppError_AsTarget(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewStorageError("rename failed", os.ErrPermission))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestAppError_WithContextOnNilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeValidation, Message: "bad"}
	err.WithContext("rows", 3)

	assert.Equal(t, 3, err.Context["rows"])
}
