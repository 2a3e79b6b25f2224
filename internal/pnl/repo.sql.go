package pnl

import (
	"context"
	"fmt"
	"time"
)

// PaidInvoiceTotal sums paid/approved invoice amounts dated inside the
// window, with a breakdown by operation type. Empty collections yield 0.
func (r *Repository) PaidInvoiceTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, map[string]float64, error) {
	if r == nil || r.pool == nil {
		return 0, nil, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT COALESCE(operation_type, ''), COALESCE(SUM(amount), 0)
FROM invoices
WHERE status IN ('paid', 'approved')
  AND invoice_date >= $1 AND invoice_date < $2
  AND ($3::text IS NULL OR department = $3)
  AND ($4::text IS NULL OR site = $4)
  AND ($5::text IS NULL OR branch = $5)
  AND ($6::text IS NULL OR operation_type = $6)
GROUP BY operation_type`
	rows, err := r.pool.Query(ctx, query,
		window.Start, window.End,
		optionalText(filters.Department), optionalText(filters.Site),
		optionalText(filters.Branch), optionalText(filters.OperationType))
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var total float64
	breakdown := make(map[string]float64)
	for rows.Next() {
		var opType string
		var amount float64
		if err := rows.Scan(&opType, &amount); err != nil {
			return 0, nil, err
		}
		total += amount
		if opType != "" {
			breakdown[opType] = amount
		}
	}
	if len(breakdown) == 0 {
		breakdown = nil
	}
	return total, breakdown, rows.Err()
}

// ExpenseTotal sums operating expense records for the given expense
// categories (fuel, maintenance, ...), broken down per category.
func (r *Repository) ExpenseTotal(ctx context.Context, window PeriodWindow, categories []string, filters ReportFilters) (float64, map[string]float64, error) {
	if r == nil || r.pool == nil {
		return 0, nil, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT category, COALESCE(SUM(amount), 0)
FROM expense_records
WHERE category = ANY($1)
  AND expense_date >= $2 AND expense_date < $3
  AND ($4::text IS NULL OR department = $4)
  AND ($5::text IS NULL OR site = $5)
  AND ($6::text IS NULL OR branch = $6)
GROUP BY category`
	rows, err := r.pool.Query(ctx, query,
		categories, window.Start, window.End,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var total float64
	breakdown := make(map[string]float64)
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return 0, nil, err
		}
		total += amount
		breakdown[category] = amount
	}
	if len(breakdown) == 0 {
		breakdown = nil
	}
	return total, breakdown, rows.Err()
}

// ProcurementTotal sums completed procurement order values inside the window.
func (r *Repository) ProcurementTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, error) {
	const query = `
SELECT COALESCE(SUM(total_amount), 0)
FROM procurement_orders
WHERE status IN ('approved', 'received', 'closed')
  AND order_date >= $1 AND order_date < $2
  AND ($3::text IS NULL OR department = $3)
  AND ($4::text IS NULL OR site = $4)
  AND ($5::text IS NULL OR branch = $5)`
	return r.sumQuery(ctx, query,
		window.Start, window.End,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
}

// OvertimeTotal sums approved overtime pay inside the window.
func (r *Repository) OvertimeTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, error) {
	const query = `
SELECT COALESCE(SUM(amount), 0)
FROM overtime_records
WHERE status = 'approved'
  AND work_date >= $1 AND work_date < $2
  AND ($3::text IS NULL OR department = $3)
  AND ($4::text IS NULL OR site = $4)
  AND ($5::text IS NULL OR branch = $5)`
	return r.sumQuery(ctx, query,
		window.Start, window.End,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
}

// AllowanceTotal sums allowances of one type (trip, food) inside the window.
func (r *Repository) AllowanceTotal(ctx context.Context, window PeriodWindow, allowanceType string, filters ReportFilters) (float64, error) {
	const query = `
SELECT COALESCE(SUM(amount), 0)
FROM allowance_records
WHERE allowance_type = $1
  AND granted_date >= $2 AND granted_date < $3
  AND ($4::text IS NULL OR department = $4)
  AND ($5::text IS NULL OR site = $5)
  AND ($6::text IS NULL OR branch = $6)`
	return r.sumQuery(ctx, query,
		allowanceType, window.Start, window.End,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
}

// BusinessTripTotal sums business trip costs starting inside the window.
func (r *Repository) BusinessTripTotal(ctx context.Context, window PeriodWindow, filters ReportFilters) (float64, error) {
	const query = `
SELECT COALESCE(SUM(total_cost), 0)
FROM business_trips
WHERE start_date >= $1 AND start_date < $2
  AND ($3::text IS NULL OR department = $3)
  AND ($4::text IS NULL OR site = $4)
  AND ($5::text IS NULL OR branch = $5)`
	return r.sumQuery(ctx, query,
		window.Start, window.End,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
}

// EmployeeSalaries lists payroll records for staff cost pro-ration. The
// amortization calculator decides how much of each salary falls inside the
// reporting window.
func (r *Repository) EmployeeSalaries(ctx context.Context, filters ReportFilters) ([]EmployeeSalaryRow, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT salary, hire_date, termination_date
FROM employees
WHERE ($1::text IS NULL OR department = $1)
  AND ($2::text IS NULL OR site = $2)
  AND ($3::text IS NULL OR branch = $3)`
	rows, err := r.pool.Query(ctx, query,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeSalaryRow
	for rows.Next() {
		var row EmployeeSalaryRow
		var end *time.Time
		if err := rows.Scan(&row.MonthlySalary, &row.HireDate, &end); err != nil {
			return nil, err
		}
		row.EndDate = end
		out = append(out, row)
	}
	return out, rows.Err()
}

// TrainingCourses lists HSE training costs with their effective spreading
// range.
func (r *Repository) TrainingCourses(ctx context.Context, filters ReportFilters) ([]AmortizableRow, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT total_cost, start_date, end_date
FROM hse_training_courses
WHERE ($1::text IS NULL OR department = $1)
  AND ($2::text IS NULL OR site = $2)
  AND ($3::text IS NULL OR branch = $3)`
	rows, err := r.pool.Query(ctx, query,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AmortizableRow
	for rows.Next() {
		var row AmortizableRow
		if err := rows.Scan(&row.TotalAmount, &row.EffectiveStart, &row.EffectiveEnd); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Assets lists the asset register for depreciation and rental spreading.
func (r *Repository) Assets(ctx context.Context, filters ReportFilters) ([]AssetRow, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("pnl repo not initialised")
	}
	const query = `
SELECT purchase_value, purchase_date, useful_life_months, is_rental,
       rental_start_date, rental_end_date, COALESCE(monthly_rental_rate, 0)
FROM assets
WHERE ($1::text IS NULL OR department = $1)
  AND ($2::text IS NULL OR site = $2)
  AND ($3::text IS NULL OR branch = $3)`
	rows, err := r.pool.Query(ctx, query,
		optionalText(filters.Department), optionalText(filters.Site), optionalText(filters.Branch))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AssetRow
	for rows.Next() {
		var row AssetRow
		var rentalStart, rentalEnd *time.Time
		if err := rows.Scan(&row.PurchaseValue, &row.PurchaseDate, &row.UsefulLifeMonths,
			&row.IsRental, &rentalStart, &rentalEnd, &row.MonthlyRentalRate); err != nil {
			return nil, err
		}
		row.RentalStartDate = rentalStart
		row.RentalEndDate = rentalEnd
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repository) sumQuery(ctx context.Context, query string, args ...any) (float64, error) {
	if r == nil || r.pool == nil {
		return 0, fmt.Errorf("pnl repo not initialised")
	}
	var total float64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
