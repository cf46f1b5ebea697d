package http

import (
	"telcoclean/internal/services"
)

// ReportService exposes the result of the latest completed run.
type ReportService interface {
	Latest() (*services.RunResult, error)
	Table(name string) (*services.TableInfo, error)
}
