package pnl

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read-only access to the transactional collections the
// engine aggregates, plus persistence for manual entries. Every collection
// is owned by an excluded CRUD module; the engine only queries their tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a P&L repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SourceReader is the query surface consumed by the category adapters.
type SourceReader interface {
	PaidInvoiceTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, map[string]float64, error)
	ExpenseTotal(ctx context.Context, window PeriodWindow, categories []string, filters ReportFilters) (float64, map[string]float64, error)
	ProcurementTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, error)
	OvertimeTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, error)
	AllowanceTotal(ctx context.Context, window PeriodWindow, allowanceType string, filters ReportFilters) (float64, error)
	BusinessTripTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, error)
	EmployeeSalaries(ctx context.Context, filters ReportFilters) ([]EmployeeSalaryRow, error)
	TrainingCourses(ctx context.Context, filters ReportFilters) ([]AmortizableRow, error)
	Assets(ctx context.Context, filters ReportFilters) ([]AssetRow, error)
}

// EmployeeSalaryRow carries the payroll fields needed for staff cost
// pro-ration.
type EmployeeSalaryRow struct {
	MonthlySalary float64
	HireDate      time.Time
	EndDate       *time.Time
}

// AmortizableRow is a generic deferred-cost record spread across its
// effective range.
type AmortizableRow struct {
	TotalAmount    float64
	EffectiveStart time.Time
	EffectiveEnd   time.Time
}

// AssetRow carries the asset register fields needed for depreciation and
// rental spreading.
type AssetRow struct {
	PurchaseValue     float64
	PurchaseDate      time.Time
	UsefulLifeMonths  int
	IsRental          bool
	RentalStartDate   *time.Time
	RentalEndDate     *time.Time
	MonthlyRentalRate float64
}

func optionalText(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: v, Valid: true}
}
