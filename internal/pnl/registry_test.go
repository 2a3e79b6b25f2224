package pnl

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func staticAdapter(amount float64) AdapterFunc {
	return func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		return CategoryRollup{Amount: amount}, nil
	}
}

func failingAdapter(err error) AdapterFunc {
	return func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		return CategoryRollup{}, err
	}
}

func TestRegistryRejectsDuplicateCategory(t *testing.T) {
	reg := NewRegistry(slog.Default())
	if err := reg.Register(CategoryStaffCost, staticAdapter(1)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(CategoryStaffCost, staticAdapter(2)); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRunAllIsolatesFailingAdapter(t *testing.T) {
	reg := NewRegistry(slog.Default())
	if err := reg.Register(CategoryOperatingRevenue, staticAdapter(10000)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(CategoryStaffCost, failingAdapter(errors.New("source offline"))); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(CategoryOvertimeCost, staticAdapter(250)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	window := PeriodWindow{Start: date(2024, time.March, 1), End: date(2024, time.April, 1)}
	rollups, err := reg.RunAll(context.Background(), window, ReportFilters{})
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if len(rollups) != 3 {
		t.Fatalf("expected 3 rollups, got %d", len(rollups))
	}
	if got := rollups[CategoryOperatingRevenue]; got.Amount != 10000 || got.Degraded {
		t.Fatalf("healthy adapter affected by failure: %+v", got)
	}
	if got := rollups[CategoryOvertimeCost]; got.Amount != 250 || got.Degraded {
		t.Fatalf("healthy adapter affected by failure: %+v", got)
	}
	degraded := rollups[CategoryStaffCost]
	if !degraded.Degraded || degraded.Amount != 0 {
		t.Fatalf("failed adapter not degraded to zero: %+v", degraded)
	}
	if degraded.CategoryID != CategoryStaffCost {
		t.Fatalf("degraded rollup lost its category id: %q", degraded.CategoryID)
	}
}

func TestRunAllPropagatesCancellation(t *testing.T) {
	reg := NewRegistry(slog.Default())
	err := reg.Register("slow", AdapterFunc(func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
		<-ctx.Done()
		return CategoryRollup{}, ctx.Err()
	}))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reg.RunAll(ctx, PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.February, 1)}, ReportFilters{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunAllStampsCategoryIDs(t *testing.T) {
	reg := NewRegistry(slog.Default())
	if err := reg.Register(CategoryDepreciation, staticAdapter(300)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	rollups, err := reg.RunAll(context.Background(), PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.February, 1)}, ReportFilters{})
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if rollups[CategoryDepreciation].CategoryID != CategoryDepreciation {
		t.Fatalf("rollup missing category id: %+v", rollups[CategoryDepreciation])
	}
}
