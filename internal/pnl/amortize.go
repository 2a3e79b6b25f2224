package pnl

import (
	"math"
	"time"
)

// AmortizationSpec describes a monetary total spread straight-line over a
// number of months between two effective dates. The same spec drives salary
// pro-ration, asset depreciation, rental spreading and deferred training
// costs; the overlap math lives here and nowhere else.
type AmortizationSpec struct {
	TotalAmount    float64
	EffectiveStart time.Time
	EffectiveEnd   time.Time
	PeriodMonths   int
}

// MonthlyAmount returns the straight-line monthly share.
func (s AmortizationSpec) MonthlyAmount() float64 {
	if s.PeriodMonths <= 0 {
		return 0
	}
	return s.TotalAmount / float64(s.PeriodMonths)
}

// AmortizedAmount computes the pro-rated share of the spec's total that
// falls inside the reporting window. Overlap is counted in whole calendar
// months, partial boundary months counting as one (the straight-line
// depreciation convention). The result is clamped to [0, TotalAmount].
func AmortizedAmount(spec AmortizationSpec, window PeriodWindow) float64 {
	if spec.PeriodMonths <= 0 || spec.TotalAmount == 0 {
		return 0
	}

	overlapStart := spec.EffectiveStart
	if window.Start.After(overlapStart) {
		overlapStart = window.Start
	}
	overlapEnd := spec.EffectiveEnd
	if window.End.Before(overlapEnd) {
		overlapEnd = window.End
	}
	if !overlapStart.Before(overlapEnd) {
		return 0
	}

	months := monthsBetween(overlapStart, overlapEnd)
	amount := spec.MonthlyAmount() * float64(months)
	return math.Min(math.Max(amount, 0), math.Max(spec.TotalAmount, 0))
}

// monthsBetween counts the calendar months touched by [start, end).
func monthsBetween(start, end time.Time) int {
	last := end.Add(-time.Nanosecond)
	months := (last.Year()-start.Year())*12 + int(last.Month()) - int(start.Month()) + 1
	if months < 0 {
		return 0
	}
	return months
}
