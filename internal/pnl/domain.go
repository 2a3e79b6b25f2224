package pnl

import (
	"fmt"
	"time"

	"github.com/fieldline-erp/fieldline-erp/internal/platform/httpx"
)

// PeriodMode selects how a reporting window is derived.
type PeriodMode string

// Supported period presets. PeriodCustom is implied whenever explicit bounds
// are supplied and is never accepted as a decomposition granularity.
const (
	PeriodMonthly    PeriodMode = "monthly"
	PeriodQuarterly  PeriodMode = "quarterly"
	PeriodHalfYearly PeriodMode = "half_yearly"
	PeriodYearly     PeriodMode = "yearly"
	PeriodCustom     PeriodMode = "custom"
)

// PeriodWindow is a half-open reporting window [Start, End).
type PeriodWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Duration returns the window length.
func (w PeriodWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// ReportFilters narrows source queries to a dimensional slice. Empty values
// mean "all". Created once per request and read-only afterwards.
type ReportFilters struct {
	Department    string
	Site          string
	Branch        string
	OperationType string
}

// CategoryRollup is the aggregated result for one P&L category over one
// window. Degraded marks rollups substituted with zero after an adapter
// failure; the report still completes.
type CategoryRollup struct {
	CategoryID string             `json:"categoryId"`
	Amount     float64            `json:"amount"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
	Degraded   bool               `json:"degraded,omitempty"`
}

// Source aggregator category identifiers. Each id is produced by exactly one
// registered adapter.
const (
	CategoryOperatingRevenue       = "operating_revenue"
	CategoryRentalEquipmentRevenue = "rental_equipment_revenue"
	CategoryRentalEquipmentCost    = "rental_equipment_cost"
	CategoryOperationCost          = "operation_cost"
	CategoryProcurementCost        = "procurement_cost"
	CategoryStaffCost              = "staff_cost"
	CategoryBusinessTripCost       = "business_trip_cost"
	CategoryOvertimeCost           = "overtime_cost"
	CategoryTripAllowanceCost      = "trip_allowance_cost"
	CategoryFoodAllowanceCost      = "food_allowance_cost"
	CategoryHSETrainingCost        = "hse_training_cost"
	CategoryDepreciation           = "depreciation"
)

// Manual entry item identifiers. These adjustment lines are not derivable
// from transactional data and are edited by finance users only.
const (
	ItemRebate               = "rebate"
	ItemDSRevenue            = "ds_revenue"
	ItemDSCost               = "ds_cost"
	ItemSubCompaniesRevenue  = "sub_companies_revenue"
	ItemOtherRevenue         = "other_revenue"
	ItemProvisionEndService  = "provision_end_service"
	ItemProvisionImpairment  = "provision_impairment"
	ItemGeneralAdminExpenses = "general_admin_expenses"
	ItemServiceAgreementCost = "service_agreement_cost"
	ItemGainSellingProducts  = "gain_selling_products"
	ItemFinanceCosts         = "finance_costs"
)

// ManualEntryCategory classifies a manual adjustment line.
type ManualEntryCategory string

const (
	ManualCategoryRevenue ManualEntryCategory = "revenue"
	ManualCategoryExpense ManualEntryCategory = "expense"
	ManualCategoryOther   ManualEntryCategory = "other"
)

// ManualEntry is a persistent finance-user adjustment line. Entries are
// seeded once from the fixed catalog and mutated only through
// ManualEntryStore.Update; deactivation is soft.
type ManualEntry struct {
	ItemID      string              `json:"itemId"`
	Description string              `json:"description"`
	Category    ManualEntryCategory `json:"category"`
	Amount      float64             `json:"amount"`
	Notes       string              `json:"notes,omitempty"`
	IsActive    bool                `json:"isActive"`
	Revision    string              `json:"revision"`
	CreatedBy   string              `json:"createdBy,omitempty"`
	UpdatedBy   string              `json:"updatedBy,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// TrendHint is a pure display hint derived from sign conventions. It never
// feeds back into any calculation.
type TrendHint string

const (
	TrendUp      TrendHint = "up"
	TrendDown    TrendHint = "down"
	TrendNeutral TrendHint = "neutral"
)

// StatementItem is one display row of a statement section.
type StatementItem struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	SourceModule string    `json:"sourceModule"`
	Trend        TrendHint `json:"trend"`
}

// StatementSection is one of the four fixed vertical P&L sections. The
// composer exclusively owns construction; nothing downstream mutates it.
type StatementSection struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Items    []StatementItem `json:"items"`
	Subtotal float64         `json:"subtotal"`
}

// StatementTotals carries the composed headline figures.
type StatementTotals struct {
	NetOperatingRevenue float64 `json:"netOperatingRevenue"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalExpenses       float64 `json:"totalExpenses"`
	EBITDA              float64 `json:"ebitda"`
	NetProfit           float64 `json:"netProfit"`
	Margin              float64 `json:"margin"`
}

// Statement is the composed vertical P&L for a single window.
type Statement struct {
	Window             PeriodWindow       `json:"window"`
	Sections           []StatementSection `json:"sections"`
	Totals             StatementTotals    `json:"totals"`
	Degraded           bool               `json:"degraded"`
	DegradedCategories []string           `json:"degradedCategories,omitempty"`
}

// CrossModuleCostEntry is a pre-aggregated cost rollup pushed by another
// subsystem. Written only through the push endpoint, read-only afterwards.
type CrossModuleCostEntry struct {
	Module        string             `json:"module"`
	CostsByBucket map[string]float64 `json:"costsByBucket"`
	RecordCount   int                `json:"recordCount"`
	LastUpdated   time.Time          `json:"lastUpdated"`
}

// Total sums all buckets of the entry.
func (e CrossModuleCostEntry) Total() float64 {
	var total float64
	for _, v := range e.CostsByBucket {
		total += v
	}
	return total
}

// Sentinel errors for the engine. Each wraps the matching platform sentinel
// so httpx.RespondError can map them to problem responses; adapter failures
// never surface here (they degrade instead).
var (
	// ErrInvalidRange indicates an explicit range with start after end.
	ErrInvalidRange = fmt.Errorf("pnl: invalid period range: %w", httpx.ErrInvalidRange)
	// ErrManualEntryNotFound indicates no active entry exists for the item id.
	ErrManualEntryNotFound = fmt.Errorf("pnl: manual entry not found: %w", httpx.ErrNotFound)
	// ErrValidation indicates a rejected input value.
	ErrValidation = fmt.Errorf("pnl: validation failed: %w", httpx.ErrValidation)
	// ErrRevisionConflict indicates a stale optimistic-concurrency revision.
	ErrRevisionConflict = fmt.Errorf("pnl: manual entry revision conflict: %w", httpx.ErrConflict)
)
