package pnlhttp

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
)

const dateLayout = "2006-01-02"

var periodModes = map[string]pnl.PeriodMode{
	"":            "",
	"monthly":     pnl.PeriodMonthly,
	"quarterly":   pnl.PeriodQuarterly,
	"half_yearly": pnl.PeriodHalfYearly,
	"yearly":      pnl.PeriodYearly,
	"custom":      pnl.PeriodCustom,
}

// UpdateManualEntryRequest is the PUT body for one adjustment line. Amount is
// a pointer so an absent field is distinguishable from an explicit zero.
// Revision, when present, makes the write a compare-and-swap.
type UpdateManualEntryRequest struct {
	Amount    *float64 `json:"amount" validate:"required"`
	Notes     string   `json:"notes" validate:"max=1000"`
	UpdatedBy string   `json:"updatedBy" validate:"max=100"`
	Revision  string   `json:"revision" validate:"omitempty,uuid4"`
}

// DashboardPushRequest is the POST body for a cross-module cost rollup.
type DashboardPushRequest struct {
	Module      string             `json:"module" validate:"required,max=100"`
	Costs       map[string]float64 `json:"costs" validate:"required"`
	RecordCount int                `json:"recordCount" validate:"gte=0"`
}

// DashboardPushResponse acknowledges a push.
type DashboardPushResponse struct {
	Module      string    `json:"module"`
	Total       float64   `json:"total"`
	RecordCount int       `json:"recordCount"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ManualEntriesResponse wraps the adjustment ledger listing.
type ManualEntriesResponse struct {
	Entries []pnl.ManualEntry `json:"entries"`
}

type queryError struct {
	field string
}

func (e queryError) Error() string {
	return fmt.Sprintf("invalid %s parameter", e.field)
}

// parseReportQuery reads the common report parameters. Explicit start/end
// dates are inclusive on both sides as users supply them; the end date is
// shifted one day so the engine sees a half-open window.
func parseReportQuery(r *http.Request) (pnl.ReportQuery, error) {
	q := r.URL.Query()

	mode, ok := periodModes[strings.ToLower(strings.TrimSpace(q.Get("period")))]
	if !ok {
		return pnl.ReportQuery{}, queryError{field: "period"}
	}

	var start, end *time.Time
	if raw := strings.TrimSpace(q.Get("start")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return pnl.ReportQuery{}, queryError{field: "start"}
		}
		start = &parsed
	}
	if raw := strings.TrimSpace(q.Get("end")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return pnl.ReportQuery{}, queryError{field: "end"}
		}
		end = &parsed
	}
	if (start == nil) != (end == nil) {
		return pnl.ReportQuery{}, queryError{field: "start/end"}
	}
	if start != nil {
		// Inversion is checked on the dates as supplied; shifting the end
		// first would let a range inverted by one day through as an empty
		// window.
		if start.After(*end) {
			return pnl.ReportQuery{}, fmt.Errorf("%w: %s after %s", pnl.ErrInvalidRange,
				start.Format(dateLayout), end.Format(dateLayout))
		}
		exclusive := end.AddDate(0, 0, 1)
		end = &exclusive
	}

	return pnl.ReportQuery{
		Mode:  mode,
		Start: start,
		End:   end,
		Filters: pnl.ReportFilters{
			Department:    strings.TrimSpace(q.Get("department")),
			Site:          strings.TrimSpace(q.Get("site")),
			Branch:        strings.TrimSpace(q.Get("branch")),
			OperationType: strings.TrimSpace(q.Get("operationType")),
		},
	}, nil
}

func queryToken(q pnl.ReportQuery) string {
	parts := []string{string(q.Mode)}
	if q.Start != nil {
		parts = append(parts, q.Start.Format(dateLayout))
	}
	if q.End != nil {
		parts = append(parts, q.End.Format(dateLayout))
	}
	parts = append(parts, q.Filters.Department, q.Filters.Site, q.Filters.Branch, q.Filters.OperationType)
	return strings.Join(parts, "|")
}
