// Package http implements the HTTP handlers of the report server.
//
// Handlers stay thin: they parse the request, call a service and render the
// result with chi/render. Failures are rendered as the JSON error envelope
// of internal/errors:
//
//	{"success": false, "error": {"status_code": 404, "error_code": "REPORT_NOT_FOUND", "message": "..."}}
//
// Routes, mounted by internal/app:
//
//	GET  /api/health, /api/health/ready, /api/version
//	GET  /api/report[?format=text], /api/profile, /api/tables/{table}
//	POST /api/runs            queue a pipeline run (202 + job)
//	GET  /api/runs, /api/runs/{id}
//	GET  /metrics             Prometheus exposition
package http
