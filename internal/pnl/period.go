package pnl

import (
	"fmt"
	"time"
)

// ResolveWindow converts a requested reporting mode into a concrete
// [start, end) window. Explicit bounds, when both are supplied, take
// precedence over the preset and are used verbatim. Preset bounds are
// calendar aligned relative to now: quarters to Jan/Apr/Jul/Oct, halves to
// Jan/Jul.
func ResolveWindow(mode PeriodMode, explicitStart, explicitEnd *time.Time, now time.Time) (PeriodWindow, error) {
	if explicitStart != nil && explicitEnd != nil {
		start := dateOnly(*explicitStart)
		end := dateOnly(*explicitEnd)
		if start.After(end) {
			return PeriodWindow{}, fmt.Errorf("%w: %s after %s", ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		return PeriodWindow{Start: start, End: end, Label: customLabel(start, end)}, nil
	}

	now = dateOnly(now)
	year := now.Year()
	switch mode {
	case PeriodQuarterly:
		qStart := time.Month(((int(now.Month())-1)/3)*3 + 1)
		start := time.Date(year, qStart, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, 0)
		return PeriodWindow{Start: start, End: end, Label: quarterLabel(start)}, nil
	case PeriodHalfYearly:
		hStart := time.January
		if now.Month() >= time.July {
			hStart = time.July
		}
		start := time.Date(year, hStart, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 6, 0)
		return PeriodWindow{Start: start, End: end, Label: halfLabel(start)}, nil
	case PeriodYearly:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		return PeriodWindow{Start: start, End: end, Label: fmt.Sprintf("%d", year)}, nil
	case PeriodMonthly, PeriodCustom, "":
		start := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		return PeriodWindow{Start: start, End: end, Label: monthLabel(start)}, nil
	default:
		return PeriodWindow{}, fmt.Errorf("%w: unknown period mode %q", ErrInvalidRange, mode)
	}
}

// Decompose splits a window into calendar-aligned sub-windows of the given
// granularity. Sub-windows are contiguous and exactly cover the input; the
// last one is truncated at the window end rather than dropped, so a window
// whose end does not land on a boundary still accounts for its tail.
// Truncated head or tail windows carry a partial marker in their label so
// charts do not present them as full periods.
func Decompose(window PeriodWindow, mode PeriodMode) []PeriodWindow {
	if !window.Start.Before(window.End) {
		return nil
	}

	var stepMonths int
	switch mode {
	case PeriodQuarterly:
		stepMonths = 3
	case PeriodHalfYearly:
		stepMonths = 6
	case PeriodYearly:
		stepMonths = 12
	default:
		stepMonths = 1
	}

	var out []PeriodWindow
	cursor := window.Start
	for cursor.Before(window.End) {
		boundary := alignDown(cursor, stepMonths).AddDate(0, stepMonths, 0)
		end := boundary
		if end.After(window.End) {
			end = window.End
		}
		sub := PeriodWindow{Start: cursor, End: end}
		switch stepMonths {
		case 3:
			sub.Label = quarterLabel(cursor)
		case 6:
			sub.Label = halfLabel(cursor)
		case 12:
			sub.Label = fmt.Sprintf("%d", cursor.Year())
		default:
			sub.Label = monthLabel(cursor)
		}
		if !cursor.Equal(alignDown(cursor, stepMonths)) || end.Before(boundary) {
			sub.Label += " (partial)"
		}
		out = append(out, sub)
		cursor = end
	}
	return out
}

// PreviousWindow returns the window immediately preceding w at the same
// granularity. Used for period-over-period deltas in the analysis report.
func PreviousWindow(w PeriodWindow, mode PeriodMode) PeriodWindow {
	switch mode {
	case PeriodQuarterly:
		start := w.Start.AddDate(0, -3, 0)
		return PeriodWindow{Start: start, End: w.Start, Label: quarterLabel(start)}
	case PeriodHalfYearly:
		start := w.Start.AddDate(0, -6, 0)
		return PeriodWindow{Start: start, End: w.Start, Label: halfLabel(start)}
	case PeriodYearly:
		start := w.Start.AddDate(-1, 0, 0)
		return PeriodWindow{Start: start, End: w.Start, Label: fmt.Sprintf("%d", start.Year())}
	case PeriodMonthly:
		start := w.Start.AddDate(0, -1, 0)
		return PeriodWindow{Start: start, End: w.Start, Label: monthLabel(start)}
	default:
		span := w.End.Sub(w.Start)
		start := w.Start.Add(-span)
		return PeriodWindow{Start: start, End: w.Start, Label: customLabel(start, w.Start)}
	}
}

func alignDown(t time.Time, stepMonths int) time.Time {
	month := time.Month((((int(t.Month()) - 1) / stepMonths) * stepMonths) + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

func quarterLabel(t time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}

func halfLabel(t time.Time) string {
	half := 1
	if t.Month() >= time.July {
		half = 2
	}
	return fmt.Sprintf("H%d %d", half, t.Year())
}

func customLabel(start, end time.Time) string {
	last := end.AddDate(0, 0, -1)
	return start.Format("2006-01-02") + " to " + last.Format("2006-01-02")
}
