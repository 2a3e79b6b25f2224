package pnl

import (
	"context"
)

// Expense categories folded into the operating cost rollup.
var operationExpenseCategories = []string{"fuel", "maintenance", "consumables"}

// RegisterSourceAdapters wires the full adapter set over a source reader.
// Each adapter owns exactly one category id and reads exactly one
// collaborator collection.
func RegisterSourceAdapters(reg *Registry, src SourceReader) error {
	adapters := map[string]AdapterFunc{
		CategoryOperatingRevenue: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, breakdown, err := src.PaidInvoiceTotal(ctx, window, filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total, Breakdown: breakdown}, nil
		},
		CategoryOperationCost: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, breakdown, err := src.ExpenseTotal(ctx, window, operationExpenseCategories, filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total, Breakdown: breakdown}, nil
		},
		CategoryProcurementCost: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, err := src.ProcurementTotal(ctx, window, filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total}, nil
		},
		CategoryOvertimeCost: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, err := src.OvertimeTotal(ctx, window, filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total}, nil
		},
		CategoryTripAllowanceCost: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, err := src.AllowanceTotal(ctx, window, "trip", filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total}, nil
		},
		CategoryFoodAllowanceCost: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, err := src.AllowanceTotal(ctx, window, "food", filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total}, nil
		},
		CategoryBusinessTripCost: func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
			total, err := src.BusinessTripTotal(ctx, window, filters)
			if err != nil {
				return CategoryRollup{}, err
			}
			return CategoryRollup{Amount: total}, nil
		},
		CategoryStaffCost:              staffCostAdapter(src),
		CategoryHSETrainingCost:        trainingCostAdapter(src),
		CategoryDepreciation:           depreciationAdapter(src),
		CategoryRentalEquipmentRevenue: rentalAdapter(src, true),
		CategoryRentalEquipmentCost:    rentalAdapter(src, false),
	}

	for id, fn := range adapters {
		if err := reg.Register(id, fn); err != nil {
			return err
		}
	}
	return nil
}

// staffCostAdapter pro-rates each employee's monthly salary across the
// overlap between their employment span and the window. The amortization
// spec is built so the monthly amount equals the salary, which routes the
// overlap counting through the shared calculator.
func staffCostAdapter(src SourceReader) AdapterFunc {
	return func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		employees, err := src.EmployeeSalaries(ctx, filters)
		if err != nil {
			return CategoryRollup{}, err
		}
		var total float64
		for _, emp := range employees {
			end := window.End
			if emp.EndDate != nil && emp.EndDate.Before(end) {
				end = *emp.EndDate
			}
			months := monthsBetween(emp.HireDate, end)
			if months <= 0 {
				continue
			}
			total += AmortizedAmount(AmortizationSpec{
				TotalAmount:    emp.MonthlySalary * float64(months),
				EffectiveStart: emp.HireDate,
				EffectiveEnd:   end,
				PeriodMonths:   months,
			}, window)
		}
		return CategoryRollup{Amount: total}, nil
	}
}

func trainingCostAdapter(src SourceReader) AdapterFunc {
	return func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		courses, err := src.TrainingCourses(ctx, filters)
		if err != nil {
			return CategoryRollup{}, err
		}
		var total float64
		for _, course := range courses {
			months := monthsBetween(course.EffectiveStart, course.EffectiveEnd)
			if months <= 0 {
				continue
			}
			total += AmortizedAmount(AmortizationSpec{
				TotalAmount:    course.TotalAmount,
				EffectiveStart: course.EffectiveStart,
				EffectiveEnd:   course.EffectiveEnd,
				PeriodMonths:   months,
			}, window)
		}
		return CategoryRollup{Amount: total}, nil
	}
}

// depreciationAdapter spreads each owned asset's purchase value across its
// useful life.
func depreciationAdapter(src SourceReader) AdapterFunc {
	return func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		assets, err := src.Assets(ctx, filters)
		if err != nil {
			return CategoryRollup{}, err
		}
		var total float64
		for _, asset := range assets {
			if asset.IsRental || asset.UsefulLifeMonths <= 0 {
				continue
			}
			total += AmortizedAmount(AmortizationSpec{
				TotalAmount:    asset.PurchaseValue,
				EffectiveStart: asset.PurchaseDate,
				EffectiveEnd:   asset.PurchaseDate.AddDate(0, asset.UsefulLifeMonths, 0),
				PeriodMonths:   asset.UsefulLifeMonths,
			}, window)
		}
		return CategoryRollup{Amount: total}, nil
	}
}

// rentalAdapter spreads monthly rental rates across each rental span.
// Rented-out equipment produces revenue; rented-in equipment produces cost.
// Both directions use the same register, discriminated by rate sign: costs
// are stored negative and reported as positive cost amounts.
func rentalAdapter(src SourceReader, revenue bool) AdapterFunc {
	return func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		assets, err := src.Assets(ctx, filters)
		if err != nil {
			return CategoryRollup{}, err
		}
		var total float64
		for _, asset := range assets {
			if !asset.IsRental || asset.RentalStartDate == nil || asset.RentalEndDate == nil {
				continue
			}
			rate := asset.MonthlyRentalRate
			if revenue != (rate > 0) {
				continue
			}
			if rate < 0 {
				rate = -rate
			}
			months := monthsBetween(*asset.RentalStartDate, *asset.RentalEndDate)
			if months <= 0 {
				continue
			}
			total += AmortizedAmount(AmortizationSpec{
				TotalAmount:    rate * float64(months),
				EffectiveStart: *asset.RentalStartDate,
				EffectiveEnd:   *asset.RentalEndDate,
				PeriodMonths:   months,
			}, window)
		}
		return CategoryRollup{Amount: total}, nil
	}
}
