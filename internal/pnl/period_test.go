package pnl

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveWindowPresets(t *testing.T) {
	now := date(2024, time.August, 17)

	cases := []struct {
		mode  PeriodMode
		start time.Time
		end   time.Time
		label string
	}{
		{PeriodMonthly, date(2024, time.August, 1), date(2024, time.September, 1), "Aug 2024"},
		{PeriodQuarterly, date(2024, time.July, 1), date(2024, time.October, 1), "Q3 2024"},
		{PeriodHalfYearly, date(2024, time.July, 1), date(2025, time.January, 1), "H2 2024"},
		{PeriodYearly, date(2024, time.January, 1), date(2025, time.January, 1), "2024"},
	}
	for _, tc := range cases {
		window, err := ResolveWindow(tc.mode, nil, nil, now)
		if err != nil {
			t.Fatalf("ResolveWindow(%s) error = %v", tc.mode, err)
		}
		if !window.Start.Equal(tc.start) || !window.End.Equal(tc.end) {
			t.Fatalf("ResolveWindow(%s) = [%v, %v), want [%v, %v)", tc.mode, window.Start, window.End, tc.start, tc.end)
		}
		if window.Label != tc.label {
			t.Fatalf("ResolveWindow(%s) label = %q, want %q", tc.mode, window.Label, tc.label)
		}
	}
}

func TestResolveWindowExplicitRangeWins(t *testing.T) {
	start := date(2024, time.February, 10)
	end := date(2024, time.March, 20)
	window, err := ResolveWindow(PeriodYearly, &start, &end, date(2024, time.August, 17))
	if err != nil {
		t.Fatalf("ResolveWindow() error = %v", err)
	}
	if !window.Start.Equal(start) || !window.End.Equal(end) {
		t.Fatalf("explicit range not honoured: [%v, %v)", window.Start, window.End)
	}
}

func TestResolveWindowInvertedRange(t *testing.T) {
	start := date(2024, time.March, 1)
	end := date(2024, time.February, 1)
	_, err := ResolveWindow(PeriodCustom, &start, &end, time.Now())
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDecomposeMonthlyCoversWindowExactly(t *testing.T) {
	window := PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.July, 1)}
	subs := Decompose(window, PeriodMonthly)
	if len(subs) != 6 {
		t.Fatalf("expected 6 sub-windows, got %d", len(subs))
	}
	if subs[0].Label != "Jan 2024" || subs[5].Label != "Jun 2024" {
		t.Fatalf("unexpected labels %q ... %q", subs[0].Label, subs[5].Label)
	}
	cursor := window.Start
	for i, sub := range subs {
		if !sub.Start.Equal(cursor) {
			t.Fatalf("gap before sub-window %d: start %v, want %v", i, sub.Start, cursor)
		}
		if !sub.Start.Before(sub.End) {
			t.Fatalf("empty sub-window %d", i)
		}
		cursor = sub.End
	}
	if !cursor.Equal(window.End) {
		t.Fatalf("union ends at %v, want %v", cursor, window.End)
	}
}

func TestDecomposeKeepsPartialTail(t *testing.T) {
	window := PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.May, 16)}
	subs := Decompose(window, PeriodQuarterly)
	if len(subs) != 2 {
		t.Fatalf("expected 2 sub-windows, got %d", len(subs))
	}
	last := subs[len(subs)-1]
	if !last.End.Equal(window.End) {
		t.Fatalf("partial tail dropped: last end %v, want %v", last.End, window.End)
	}
	if subs[0].Label != "Q1 2024" || last.Label != "Q2 2024 (partial)" {
		t.Fatalf("unexpected labels %q, %q", subs[0].Label, last.Label)
	}
}

func TestDecomposeMisalignedStart(t *testing.T) {
	window := PeriodWindow{Start: date(2024, time.February, 15), End: date(2024, time.April, 10)}
	subs := Decompose(window, PeriodMonthly)
	if len(subs) != 3 {
		t.Fatalf("expected 3 sub-windows, got %d", len(subs))
	}
	if !subs[0].Start.Equal(window.Start) || !subs[0].End.Equal(date(2024, time.March, 1)) {
		t.Fatalf("first sub-window [%v, %v) not clipped to calendar boundary", subs[0].Start, subs[0].End)
	}
	if !subs[2].End.Equal(window.End) {
		t.Fatalf("last sub-window end %v, want %v", subs[2].End, window.End)
	}
}

func TestDecomposeMarksPartialLabels(t *testing.T) {
	window := PeriodWindow{Start: date(2024, time.February, 15), End: date(2024, time.April, 10)}
	subs := Decompose(window, PeriodMonthly)
	if len(subs) != 3 {
		t.Fatalf("expected 3 sub-windows, got %d", len(subs))
	}
	want := []string{"Feb 2024 (partial)", "Mar 2024", "Apr 2024 (partial)"}
	for i, sub := range subs {
		if sub.Label != want[i] {
			t.Fatalf("sub-window %d label = %q, want %q", i, sub.Label, want[i])
		}
	}
}

func TestPreviousWindowMonthly(t *testing.T) {
	window := PeriodWindow{Start: date(2024, time.March, 1), End: date(2024, time.April, 1)}
	prev := PreviousWindow(window, PeriodMonthly)
	if !prev.Start.Equal(date(2024, time.February, 1)) || !prev.End.Equal(window.Start) {
		t.Fatalf("previous window = [%v, %v)", prev.Start, prev.End)
	}
	if prev.Label != "Feb 2024" {
		t.Fatalf("previous label = %q", prev.Label)
	}
}
