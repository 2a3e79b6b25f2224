package pnl

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ReportQuery is the parsed request for any report endpoint. Explicit bounds
// take precedence over Mode.
type ReportQuery struct {
	Mode    PeriodMode
	Start   *time.Time
	End     *time.Time
	Filters ReportFilters
}

// SummaryReport carries the headline figures for a single window.
type SummaryReport struct {
	Window             PeriodWindow    `json:"window"`
	Totals             StatementTotals `json:"totals"`
	Degraded           bool            `json:"degraded"`
	DegradedCategories []string        `json:"degradedCategories,omitempty"`
}

// ReportWarmer schedules a background rebuild of the standard reporting
// windows. The service calls it after invalidating the report cache so the
// next dashboard request finds warm entries again.
type ReportWarmer interface {
	ScheduleWarmup(ctx context.Context) error
}

// Service orchestrates the engine: period resolution, concurrent source
// aggregation, manual adjustments, composition, trends and analysis.
type Service struct {
	registry *Registry
	manual   *ManualEntryStore
	cross    *CrossModuleCache
	cache    *Cache
	warmer   ReportWarmer
	logger   *slog.Logger
	clock    func() time.Time

	// marginThreshold is the net margin percentage below which the analysis
	// report raises a warning.
	marginThreshold float64
}

// ServiceConfig collects tunables for NewService.
type ServiceConfig struct {
	MarginThreshold float64
}

// NewService wires the engine components together. cache may be nil, in
// which case every report is computed fresh.
func NewService(registry *Registry, manual *ManualEntryStore, cross *CrossModuleCache, cache *Cache, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.MarginThreshold
	if threshold == 0 {
		threshold = 10
	}
	return &Service{
		registry:        registry,
		manual:          manual,
		cross:           cross,
		cache:           cache,
		logger:          logger,
		clock:           func() time.Time { return time.Now().UTC() },
		marginThreshold: threshold,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.clock = fn
	}
}

// WithWarmer attaches a background warmup scheduler. Optional; without one
// invalidated reports are rebuilt lazily on the next request.
func (s *Service) WithWarmer(w ReportWarmer) {
	s.warmer = w
}

// Summary returns headline totals for the resolved window.
func (s *Service) Summary(ctx context.Context, q ReportQuery) (SummaryReport, error) {
	window, err := s.resolveWindow(q)
	if err != nil {
		return SummaryReport{}, err
	}
	statement, err := s.Statement(ctx, window, q.Filters)
	if err != nil {
		return SummaryReport{}, err
	}
	return SummaryReport{
		Window:             statement.Window,
		Totals:             statement.Totals,
		Degraded:           statement.Degraded,
		DegradedCategories: statement.DegradedCategories,
	}, nil
}

// Table returns the full vertical statement for the resolved window.
func (s *Service) Table(ctx context.Context, q ReportQuery) (Statement, error) {
	window, err := s.resolveWindow(q)
	if err != nil {
		return Statement{}, err
	}
	return s.Statement(ctx, window, q.Filters)
}

// Statement builds (or fetches from cache) the composed statement for one
// concrete window.
func (s *Service) Statement(ctx context.Context, window PeriodWindow, filters ReportFilters) (Statement, error) {
	if s == nil || s.registry == nil {
		return Statement{}, fmt.Errorf("pnl: service not initialised")
	}
	key, err := s.cache.BuildKey(ctx, windowKey("table", window, filters)...)
	if err != nil {
		return Statement{}, err
	}
	var statement Statement
	err = s.cache.FetchJSON(ctx, key, &statement, func(ctx context.Context) (any, error) {
		return s.buildStatement(ctx, window, filters)
	})
	if err != nil {
		return Statement{}, err
	}
	return statement, nil
}

// buildStatement is the uncached single-window pipeline: concurrent fan-out
// over all category adapters, cross-module backfill for degraded categories,
// manual adjustments, then composition.
func (s *Service) buildStatement(ctx context.Context, window PeriodWindow, filters ReportFilters) (Statement, error) {
	rollups, err := s.registry.RunAll(ctx, window, filters)
	if err != nil {
		return Statement{}, err
	}

	s.backfillFromCrossModule(rollups)

	manual := map[string]float64{}
	if s.manual != nil {
		entries, err := s.manual.List(ctx)
		if err != nil {
			// A failing adjustment ledger degrades like a failing adapter:
			// the statement completes with those lines at zero.
			s.logger.Warn("manual entries unavailable, composing without adjustments", slog.Any("error", err))
			rollups["manual_entries"] = CategoryRollup{CategoryID: "manual_entries", Degraded: true}
		} else {
			manual = ManualAmounts(entries)
		}
	}

	statement := Compose(rollups, manual)
	statement.Window = window
	return statement, nil
}

// backfillFromCrossModule substitutes fresh pushed rollups for categories
// whose direct query path degraded.
func (s *Service) backfillFromCrossModule(rollups map[string]CategoryRollup) {
	if s.cross == nil {
		return
	}
	for module, categoryID := range crossModuleCategories {
		rollup, ok := rollups[categoryID]
		if !ok || !rollup.Degraded {
			continue
		}
		entry, ok := s.cross.Get(module)
		if !ok {
			continue
		}
		s.logger.Info("backfilled category from cross-module cache",
			slog.String("category", categoryID),
			slog.String("module", module),
			slog.Time("pushed_at", entry.LastUpdated))
		rollups[categoryID] = CategoryRollup{
			CategoryID: categoryID,
			Amount:     entry.Total(),
			Breakdown:  entry.CostsByBucket,
		}
	}
}

// ManualEntries lists the adjustment ledger.
func (s *Service) ManualEntries(ctx context.Context) ([]ManualEntry, error) {
	if s == nil || s.manual == nil {
		return nil, fmt.Errorf("pnl: manual entry store not configured")
	}
	return s.manual.List(ctx)
}

// UpdateManualEntry writes one adjustment line and invalidates every cached
// report, since any line can shift the composed totals.
func (s *Service) UpdateManualEntry(ctx context.Context, itemID string, amount float64, notes, updatedBy, expectedRevision string) (ManualEntry, error) {
	if s == nil || s.manual == nil {
		return ManualEntry{}, fmt.Errorf("pnl: manual entry store not configured")
	}
	entry, err := s.manual.Update(ctx, itemID, amount, notes, updatedBy, expectedRevision)
	if err != nil {
		return ManualEntry{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed after manual entry update", slog.Any("error", err))
	}
	s.scheduleWarmup(ctx)
	return entry, nil
}

// PushDashboardData accepts a pre-aggregated cost rollup from another
// subsystem. Only modules mapped to a statement category are accepted.
func (s *Service) PushDashboardData(ctx context.Context, module string, costsByBucket map[string]float64, recordCount int) (CrossModuleCostEntry, error) {
	if s == nil || s.cross == nil {
		return CrossModuleCostEntry{}, fmt.Errorf("pnl: cross-module cache not configured")
	}
	if _, ok := crossModuleCategories[module]; !ok {
		return CrossModuleCostEntry{}, fmt.Errorf("%w: unknown module %q", ErrValidation, module)
	}
	entry := s.cross.Push(module, costsByBucket, recordCount)
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed after dashboard push", slog.Any("error", err))
	}
	s.scheduleWarmup(ctx)
	return entry, nil
}

// scheduleWarmup asks the background scheduler to rebuild the standard
// windows. Failures are logged, never propagated: the write that triggered
// the invalidation already succeeded.
func (s *Service) scheduleWarmup(ctx context.Context) {
	if s.warmer == nil {
		return
	}
	if err := s.warmer.ScheduleWarmup(ctx); err != nil {
		s.logger.Warn("report warmup scheduling failed", slog.Any("error", err))
	}
}

func (s *Service) resolveWindow(q ReportQuery) (PeriodWindow, error) {
	return ResolveWindow(q.Mode, q.Start, q.End, s.clock())
}
