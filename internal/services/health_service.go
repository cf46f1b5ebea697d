package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"telcoclean/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	cleaning  *CleaningService
	queue     QueueStats
	startTime time.Time
	logger    *slog.Logger
}

// QueueStats is the part of the job queue the health check reads.
type QueueStats interface {
	GetQueueStats() map[string]interface{}
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. cleaning and queue may be nil.
func NewHealthService(version, buildTime string, cleaning *CleaningService, queue QueueStats, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		cleaning:  cleaning,
		queue:     queue,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports the process as up along with the state of the
// latest run. It never fails: a server with no completed run is healthy.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]interface{}{
			"pipeline": hs.checkPipeline(),
		},
	}
	if hs.queue != nil {
		status.Services["queue"] = hs.queue.GetQueueStats()
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}

// ReadinessCheck is ready once a run has completed.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	pipeline := hs.checkPipeline()
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]interface{}{"pipeline": pipeline},
	}
	if pipeline.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":     hs.version,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"data_format": info.DataFormat,
		"api_version": info.APIVersion,
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkPipeline() ServiceHealth {
	if hs.cleaning == nil {
		return ServiceHealth{Status: "not_ready", Message: "pipeline not configured"}
	}
	latest, err := hs.cleaning.Latest()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Message: "latest run " + latest.ID}
}
