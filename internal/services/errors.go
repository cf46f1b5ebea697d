package services

import "errors"

var (
	// ErrNoRun is returned until a run has completed successfully.
	ErrNoRun = errors.New("no cleaning run has completed")

	// ErrRunInProgress is returned when a run is requested while another executes.
	ErrRunInProgress = errors.New("cleaning run already in progress")

	// ErrUnknownTable is returned for a table name outside the dataset.
	ErrUnknownTable = errors.New("unknown table")
)
