package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "telcoclean/internal/errors"
	"telcoclean/internal/report"
	"telcoclean/internal/services"
)

// ReportHandler serves the report, the quality profile and table
// descriptions of the latest run.
type ReportHandler struct {
	service ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "report")),
	}
}

// Routes mounts the handler under /api.
func (h *ReportHandler) Routes(r chi.Router) {
	r.Get("/report", h.GetReport)
	r.Get("/profile", h.GetProfile)
	r.Get("/tables/{table}", h.GetTable)
}

// GetReport handles GET /api/report. ?format=text returns the plain-text
// summary printed by the CLI.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	latest, err := h.service.Latest()
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		var buf bytes.Buffer
		if err := report.WriteText(&buf, latest.Report); err != nil {
			h.handleError(w, r, err)
			return
		}
		render.PlainText(w, r, buf.String())
		return
	}
	render.JSON(w, r, latest.Report)
}

// GetProfile handles GET /api/profile
func (h *ReportHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	latest, err := h.service.Latest()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, latest.Report.Profile)
}

// GetTable handles GET /api/tables/{table}
func (h *ReportHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Table(chi.URLParam(r, "table"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

func (h *ReportHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierrors.APIError
	switch {
	case errors.Is(err, services.ErrNoRun):
		apiErr = apierrors.ErrNoReport
	case errors.Is(err, services.ErrUnknownTable):
		apiErr = apierrors.NotFoundError("table " + chi.URLParam(r, "table"))
	default:
		h.logger.ErrorContext(r.Context(), "report request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		apiErr = apierrors.ErrInternalServer
	}
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
