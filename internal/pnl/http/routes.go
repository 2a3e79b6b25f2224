package pnlhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the P&L engine endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	exportLimiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/pnl", func(r chi.Router) {
		r.Get("/summary", h.handleSummary)
		r.Get("/table", h.handleTable)
		r.Get("/charts", h.handleCharts)
		r.Get("/analysis", h.handleAnalysis)
		r.Get("/manual-entries", h.handleListManualEntries)
		r.Put("/manual-entries/{itemID}", h.handleUpdateManualEntry)
		r.Post("/dashboard-data", h.handleDashboardPush)
		r.Group(func(gr chi.Router) {
			gr.Use(exportLimiter)
			gr.Get("/table/export.csv", h.handleExportCSV)
		})
	})
}
