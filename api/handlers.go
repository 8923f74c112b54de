/*
handlers.go - HTTP API handlers for balances and exports

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the attendance
  package.

ENDPOINTS:
  Balances:
    GET /api/reports/balance/me          Caller's balance
    GET /api/reports/balance/user/{id}   One user's balance (admin)
    GET /api/reports/balance/all         Every active employee (admin)

    Query: start_date, end_date (YYYY-MM-DD). If either is missing the
    current calendar month is used.

  Exports:
    GET /api/exports/monthly-report      CSV/XLSX download (admin)
        Query: year (2020-2100), month (1-12), format (csv|xlsx, default csv)
    GET /api/exports/runs                Month-close export runs (admin)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Source: read access for the engine and auth
  - Reconciler / Reporter: balance computation
  - Runs: month-close bookkeeping (optional)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid dates, period, year, month or format
  - 401: Missing/invalid token (auth.go)
  - 403: Not an admin (auth.go)
  - 500: Store errors
  A balance that cannot be computed (no schedule, not an employee) is not an
  HTTP error: it is returned as a BalanceDTO carrying "error".

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Month-close exports
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/timekeeper/attendance"
	"github.com/warp/timekeeper/calendar"
	"github.com/warp/timekeeper/export"
	"github.com/warp/timekeeper/metrics"
	"github.com/warp/timekeeper/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// ReportRuns stores month-close export runs. Implemented by *sqlite.Store.
type ReportRuns interface {
	SaveReportRun(ctx context.Context, r sqlite.ReportRun) error
	GetReportRuns(ctx context.Context, status string) ([]sqlite.ReportRun, error)
	IsReportComplete(ctx context.Context, year int, month time.Month) (bool, error)
}

// Options configure the engine behind the handlers.
type Options struct {
	CountPendingClockEvents bool
	ReportWorkers           int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Source     attendance.Source
	Reconciler *attendance.Reconciler
	Reporter   *attendance.Reporter
	Runs       ReportRuns
	Logger     *logrus.Logger

	now func() time.Time
}

// NewHandler creates a handler reading from src. runs may be nil.
func NewHandler(src attendance.Source, runs ReportRuns, opts Options, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	reconciler := attendance.NewReconciler(src, logger, attendance.Options{
		CountPendingClockEvents: opts.CountPendingClockEvents,
		Observe:                 observeReconcile,
	})
	return &Handler{
		Source:     src,
		Reconciler: reconciler,
		Reporter:   attendance.NewReporter(src, reconciler, opts.ReportWorkers, logger),
		Runs:       runs,
		Logger:     logger,
		now:        time.Now,
	}
}

// =============================================================================
// BALANCE ENDPOINTS
// =============================================================================

// GetMyBalance returns the caller's balance.
func (h *Handler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}
	h.writeBalance(w, r, id.ID)
}

// GetUserBalance returns the balance of the user in the path.
func (h *Handler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	h.writeBalance(w, r, attendance.EmployeeID(id))
}

func (h *Handler) writeBalance(w http.ResponseWriter, r *http.Request, id attendance.EmployeeID) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	res, err := h.Reconciler.Reconcile(r.Context(), id, period)
	if err != nil {
		h.Logger.WithError(err).WithField("employee_id", id).Error("balance failed")
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(res))
}

// GetAllBalances returns the balance of every active employee, failures included.
func (h *Handler) GetAllBalances(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	_, results, err := h.Reporter.Balances(r.Context(), period)
	if err != nil {
		h.Logger.WithError(err).WithField("period", period.String()).Error("balances failed")
		writeError(w, http.StatusInternalServerError, "Failed to compute balances", err)
		return
	}

	resp := AllBalancesResponse{
		PeriodStart: period.Start.String(),
		PeriodEnd:   period.End.String(),
		Employees:   make([]BalanceDTO, 0, len(results)),
	}
	for _, res := range results {
		resp.Employees = append(resp.Employees, toBalanceDTO(res))
	}
	writeJSON(w, http.StatusOK, resp)
}

// observeReconcile records every reconciliation, single or batch.
func observeReconcile(res attendance.BalanceResult, err error, elapsed time.Duration) {
	metrics.ObserveReconcile(outcome(res, err), elapsed)
}

func outcome(res attendance.BalanceResult, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case res.OK():
		return metrics.ResultSuccess
	}
	return string(res.Failure.Code)
}

// periodFromQuery reads start_date/end_date, defaulting to the current month.
func (h *Handler) periodFromQuery(r *http.Request) (calendar.Period, error) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")
	if startStr == "" || endStr == "" {
		return calendar.MonthOf(calendar.DateOf(h.now())), nil
	}

	start, err := calendar.ParseDate(startStr)
	if err != nil {
		return calendar.Period{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := calendar.ParseDate(endStr)
	if err != nil {
		return calendar.Period{}, fmt.Errorf("end_date: %w", err)
	}
	return calendar.NewPeriod(start, end)
}

// =============================================================================
// EXPORT ENDPOINTS
// =============================================================================

const (
	msgInvalidMonth = "Month must be between 1 and 12"
	msgInvalidYear  = "Invalid year"
)

// DownloadMonthlyReport builds the monthly report and serves it as an attachment.
func (h *Handler) DownloadMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, msg := parseYearMonth(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return
	}

	start := time.Now()
	body, rows, err := h.buildReport(r.Context(), format, year, month)
	metrics.ObserveExport(string(format), metrics.Result(err), time.Since(start))
	if err != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"year": year, "month": int(month), "format": format,
		}).Error("monthly report failed")
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"year": year, "month": int(month), "format": format, "rows": rows,
	}).Info("monthly report exported")

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(year, month, format))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) buildReport(ctx context.Context, format export.Format, year int, month time.Month) ([]byte, int, error) {
	start := time.Now()
	rows, err := h.Reporter.MonthlyReport(ctx, year, month)
	metrics.ObserveReport(metrics.Result(err), len(rows), time.Since(start))
	if err != nil {
		return nil, 0, err
	}
	body, err := export.Render(format, year, month, rows)
	if err != nil {
		return nil, 0, err
	}
	return body, len(rows), nil
}

// parseYearMonth returns a non-empty message when year or month is invalid.
func parseYearMonth(r *http.Request) (int, time.Month, string) {
	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, msgInvalidMonth
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 2020 || year > 2100 {
		return 0, 0, msgInvalidYear
	}
	return year, time.Month(month), ""
}

// ListReportRuns returns month-close runs, optionally filtered by ?status=.
func (h *Handler) ListReportRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []ReportRunDTO{})
		return
	}

	runs, err := h.Runs.GetReportRuns(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list report runs", err)
		return
	}

	dtos := make([]ReportRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toReportRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Source.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
