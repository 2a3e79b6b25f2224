package pnl

import (
	"testing"
	"time"
)

func TestAmortizedAmountSingleMonthOverlap(t *testing.T) {
	// Asset purchased for 120,000 over a 60 month useful life; one month of
	// overlap yields exactly one monthly share.
	spec := AmortizationSpec{
		TotalAmount:    120000,
		EffectiveStart: date(2024, time.January, 15),
		EffectiveEnd:   date(2029, time.January, 15),
		PeriodMonths:   60,
	}
	window := PeriodWindow{Start: date(2024, time.February, 1), End: date(2024, time.March, 1)}
	if got := AmortizedAmount(spec, window); got != 2000 {
		t.Fatalf("AmortizedAmount() = %v, want 2000", got)
	}
}

func TestAmortizedAmountNoOverlap(t *testing.T) {
	spec := AmortizationSpec{
		TotalAmount:    6000,
		EffectiveStart: date(2024, time.June, 1),
		EffectiveEnd:   date(2024, time.December, 1),
		PeriodMonths:   6,
	}
	before := PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.June, 1)}
	after := PeriodWindow{Start: date(2024, time.December, 1), End: date(2025, time.June, 1)}
	if got := AmortizedAmount(spec, before); got != 0 {
		t.Fatalf("window ending at effective start: got %v, want 0", got)
	}
	if got := AmortizedAmount(spec, after); got != 0 {
		t.Fatalf("window starting at effective end: got %v, want 0", got)
	}
}

func TestAmortizedAmountPartialBoundaryMonthCountsAsOne(t *testing.T) {
	spec := AmortizationSpec{
		TotalAmount:    1200,
		EffectiveStart: date(2024, time.January, 20),
		EffectiveEnd:   date(2025, time.January, 20),
		PeriodMonths:   12,
	}
	window := PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.February, 1)}
	if got := AmortizedAmount(spec, window); got != 100 {
		t.Fatalf("partial January: got %v, want 100", got)
	}
}

func TestAmortizedAmountClampedToTotal(t *testing.T) {
	spec := AmortizationSpec{
		TotalAmount:    300,
		EffectiveStart: date(2024, time.January, 15),
		EffectiveEnd:   date(2024, time.April, 15),
		PeriodMonths:   3,
	}
	// The window touches Jan..Apr: four boundary months for a three month
	// spread. The clamp keeps the result at the total.
	window := PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.May, 1)}
	if got := AmortizedAmount(spec, window); got != 300 {
		t.Fatalf("AmortizedAmount() = %v, want clamp at 300", got)
	}
}

func TestAmortizedAmountBounds(t *testing.T) {
	specs := []AmortizationSpec{
		{TotalAmount: 500, EffectiveStart: date(2023, time.March, 3), EffectiveEnd: date(2024, time.March, 3), PeriodMonths: 12},
		{TotalAmount: 75000, EffectiveStart: date(2024, time.January, 1), EffectiveEnd: date(2026, time.July, 1), PeriodMonths: 30},
		{TotalAmount: 0, EffectiveStart: date(2024, time.January, 1), EffectiveEnd: date(2024, time.July, 1), PeriodMonths: 6},
		{TotalAmount: 99.99, EffectiveStart: date(2024, time.May, 31), EffectiveEnd: date(2024, time.June, 1), PeriodMonths: 1},
	}
	windows := []PeriodWindow{
		{Start: date(2023, time.January, 1), End: date(2027, time.January, 1)},
		{Start: date(2024, time.February, 1), End: date(2024, time.February, 2)},
		{Start: date(2024, time.June, 1), End: date(2024, time.June, 1)},
	}
	for _, spec := range specs {
		for _, window := range windows {
			got := AmortizedAmount(spec, window)
			if got < 0 || got > spec.TotalAmount {
				t.Fatalf("AmortizedAmount(%+v, %+v) = %v out of [0, %v]", spec, window, got, spec.TotalAmount)
			}
		}
	}
}

func TestAmortizedAmountZeroPeriodMonths(t *testing.T) {
	spec := AmortizationSpec{TotalAmount: 100, EffectiveStart: date(2024, time.January, 1), EffectiveEnd: date(2024, time.July, 1)}
	window := PeriodWindow{Start: date(2024, time.January, 1), End: date(2025, time.January, 1)}
	if got := AmortizedAmount(spec, window); got != 0 {
		t.Fatalf("zero period months: got %v, want 0", got)
	}
}
