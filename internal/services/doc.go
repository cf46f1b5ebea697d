// Package services implements the application layer shared by the CLI and
// the report server.
//
// CleaningService runs the whole pipeline for one configuration:
//
//	raw     := loader.Load(paths)
//	profile := report.NewProfile(raw)
//	resp    := operations.Manager.Execute(raw)   // cleans a copy
//	report  := report.FromRun(resp) + profile + invariant violations
//	files   := exporter.Persist(resp.Dataset, report)
//
// and remembers the latest successful result. Runs are serialized; a
// second concurrent Run fails with ErrRunInProgress instead of racing on
// the output directory.
//
// HealthService reports liveness and readiness for the HTTP layer.
package services
