package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"retail-sales-analytics/internal/report"
)

// ReportSource hands out the current report set.
type ReportSource interface {
	Reports(ctx context.Context) (*report.Set, error)
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	reports  ReportSource
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(reports ReportSource, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		reports:  reports,
		validate: validator.New(),
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// --- Report Handlers ---

// ReportQuery holds the query parameters accepted by GetReport.
// A nil Limit returns every row.
type ReportQuery struct {
	Limit *int `validate:"omitempty,min=1,max=1000"`
}

func (q ReportQuery) limit() int {
	if q.Limit == nil {
		return 0
	}
	return *q.Limit
}

// ReportListResponse lists the available report names.
type ReportListResponse struct {
	Reports []string `json:"reports"`
}

// ReportResponse is one report table.
type ReportResponse struct {
	Name      string     `json:"name"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

func (h *HTTPHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	set, ok := h.currentSet(w, r)
	if !ok {
		return
	}
	h.respondWithJSON(w, http.StatusOK, ReportListResponse{Reports: set.Names()})
}

func (h *HTTPHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var query ReportQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid limit format")
			return
		}
		query.Limit = &limit
	}
	if err := h.validate.Struct(query); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	set, ok := h.currentSet(w, r)
	if !ok {
		return
	}
	table, found := set.Table(name)
	if !found {
		h.respondWithError(w, http.StatusNotFound, "Report not found: "+name)
		return
	}
	h.respondWithJSON(w, http.StatusOK, newReportResponse(table, query.limit()))
}

func (h *HTTPHandler) currentSet(w http.ResponseWriter, r *http.Request) (*report.Set, bool) {
	set, err := h.reports.Reports(r.Context())
	switch {
	case err == nil:
		return set, true
	case errors.Is(err, report.ErrNotReady):
		h.respondWithError(w, http.StatusServiceUnavailable, "Reports are not available yet")
	default:
		h.logger.Error().Err(err).Msg("failed to load reports")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load reports")
	}
	return nil, false
}

func newReportResponse(table report.Table, limit int) ReportResponse {
	rows := table.Rows()
	total := len(rows)
	if limit > 0 && limit < total {
		rows = rows[:limit]
	}
	return ReportResponse{
		Name:      table.Name(),
		Header:    table.Header(),
		Rows:      rows,
		TotalRows: total,
	}
}

// RegisterRoutes sets up the routes for the HTTP handlers.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Get("/{name}", h.GetReport)
	})
}
