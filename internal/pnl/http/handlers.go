package pnlhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fieldline-erp/fieldline-erp/internal/platform/httpx"
	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
)

const requestTimeout = 10 * time.Second

// ReportService defines the engine contract used by the handler.
type ReportService interface {
	Summary(ctx context.Context, q pnl.ReportQuery) (pnl.SummaryReport, error)
	Table(ctx context.Context, q pnl.ReportQuery) (pnl.Statement, error)
	Charts(ctx context.Context, q pnl.ReportQuery) (pnl.ChartReport, error)
	Analysis(ctx context.Context, q pnl.ReportQuery) (pnl.AnalysisReport, error)
	ManualEntries(ctx context.Context) ([]pnl.ManualEntry, error)
	UpdateManualEntry(ctx context.Context, itemID string, amount float64, notes, updatedBy, expectedRevision string) (pnl.ManualEntry, error)
	PushDashboardData(ctx context.Context, module string, costsByBucket map[string]float64, recordCount int) (pnl.CrossModuleCostEntry, error)
}

// Handler coordinates HTTP requests for the consolidated P&L engine.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
}

// NewHandler constructs the P&L HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	report, err := buildShared(ctx, "summary:"+queryToken(q), func(ctx context.Context) (pnl.SummaryReport, error) {
		return h.service.Summary(ctx, q)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	observeReportBuild("summary", time.Since(start))
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	statement, err := h.loadStatement(w, r)
	if err != nil {
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	report, err := buildShared(ctx, "charts:"+queryToken(q), func(ctx context.Context) (pnl.ChartReport, error) {
		return h.service.Charts(ctx, q)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	observeReportBuild("charts", time.Since(start))
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	report, err := buildShared(ctx, "analysis:"+queryToken(q), func(ctx context.Context) (pnl.AnalysisReport, error) {
		return h.service.Analysis(ctx, q)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	observeReportBuild("analysis", time.Since(start))
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleListManualEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ManualEntries(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ManualEntriesResponse{Entries: entries})
}

func (h *Handler) handleUpdateManualEntry(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req UpdateManualEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updatedBy := req.UpdatedBy
	if updatedBy == "" {
		updatedBy = "api"
	}
	entry, err := h.service.UpdateManualEntry(r.Context(), itemID, *req.Amount, req.Notes, updatedBy, req.Revision)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleDashboardPush(w http.ResponseWriter, r *http.Request) {
	var req DashboardPushRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	entry, err := h.service.PushDashboardData(r.Context(), req.Module, req.Costs, req.RecordCount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	recordDashboardPush(entry.Module)
	httpx.JSON(w, http.StatusAccepted, DashboardPushResponse{
		Module:      entry.Module,
		Total:       entry.Total(),
		RecordCount: entry.RecordCount,
		LastUpdated: entry.LastUpdated,
	})
}

// loadStatement resolves the query and builds the statement, writing the
// error response itself so CSV and JSON paths share one flow.
func (h *Handler) loadStatement(w http.ResponseWriter, r *http.Request) (pnl.Statement, error) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.respondError(w, err)
		return pnl.Statement{}, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	statement, err := buildShared(ctx, "table:"+queryToken(q), func(ctx context.Context) (pnl.Statement, error) {
		return h.service.Table(ctx, q)
	})
	if err != nil {
		h.respondError(w, err)
		return pnl.Statement{}, err
	}
	observeReportBuild("table", time.Since(start))
	return statement, nil
}

// respondError answers request-shape errors itself and defers everything
// else to the platform mapper; the engine sentinels wrap the httpx ones.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var qErr queryError
	if errors.As(err, &qErr) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", qErr.Error())
		return
	}
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error("pnl request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
