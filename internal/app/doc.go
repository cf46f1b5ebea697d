// Package app wires the report server: configuration, telemetry, the
// cleaning service, the run queue and the HTTP router.
//
// # Initialization Flow
//
//  1. Ensure the output and log directories exist
//  2. Initialize OpenTelemetry and the cleaning metrics
//  3. Create the cleaning service, the job queue and the health service
//  4. Build the chi router and the HTTP server
//
// Start executes one cleaning run before serving so that /api/report is
// available immediately. A failed run does not stop the server; readiness
// stays 503 until a run succeeds, e.g. one queued with POST /api/runs.
//
// # Usage
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: the server drains active requests, the
// job queue waits for the current run and the telemetry providers flush.
//
// The package never calls os.Exit; the main function controls the exit code.
package app
