package operations

import (
	"time"

	"telcoclean/internal/cleaning"
	"telcoclean/pkg/contracts/domain"
)

// Pipeline step identifiers
const (
	StageIDDedup       = cleaning.StageDedup
	StageIDCanonical   = cleaning.StageCanonical
	StageIDMissing     = cleaning.StageMissing
	StageIDOutliers    = cleaning.StageOutliers
	StageIDConsistency = cleaning.StageConsistency
)

// Pipeline step names
const (
	StageNameDedup       = "Duplicates removed"
	StageNameCanonical   = "Labels standardized"
	StageNameMissing     = "Missing values handled"
	StageNameOutliers    = "Outliers capped/flagged"
	StageNameConsistency = "Impossible values fixed"
)

var stageNames = map[string]string{
	StageIDDedup:       StageNameDedup,
	StageIDCanonical:   StageNameCanonical,
	StageIDMissing:     StageNameMissing,
	StageIDOutliers:    StageNameOutliers,
	StageIDConsistency: StageNameConsistency,
}

// Step metadata keys
const (
	MetadataRemoved = "rows_removed"
	MetadataChanged = "cells_changed"
	MetadataRows    = "rows_after"
)

// Default timeouts
const (
	DefaultRunTimeout = 5 * time.Minute
)

// OperationRequest represents a request to run the pipeline
type OperationRequest struct {
	ID string `json:"id"`
}

// OperationResponse is the outcome of a pipeline run. Dataset is the
// cleaned dataset; the input dataset is never modified.
type OperationResponse struct {
	ID          string                `json:"id"`
	Status      OperationStatusValue  `json:"status"`
	Duration    time.Duration         `json:"duration"`
	Steps       []*StepState          `json:"steps"`
	Corrections *cleaning.Corrections `json:"corrections"`
	Error       string                `json:"error,omitempty"`
	Dataset     *domain.Dataset       `json:"-"`
}
