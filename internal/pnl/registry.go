package pnl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Adapter produces a single category rollup for a window. Adapters must be
// pure functions of (window, filters) plus the read-only source they query;
// they may not depend on the execution order of other adapters.
type Adapter interface {
	Aggregate(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error)

// Aggregate implements Adapter.
func (f AdapterFunc) Aggregate(ctx context.Context, window PeriodWindow, filters ReportFilters) (CategoryRollup, error) {
	return f(ctx, window, filters)
}

// Registry holds one adapter per category and runs them all concurrently for
// a window. A failing adapter degrades its own category to a zero rollup and
// never aborts the report.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	logger   *slog.Logger
}

// NewRegistry constructs an empty adapter registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{adapters: make(map[string]Adapter), logger: logger}
}

// Register adds an adapter under a category id. Two adapters must never emit
// the same id, so duplicate registration is an error.
func (r *Registry) Register(categoryID string, adapter Adapter) error {
	if categoryID == "" {
		return fmt.Errorf("pnl: category id cannot be empty")
	}
	if adapter == nil {
		return fmt.Errorf("pnl: adapter for %q cannot be nil", categoryID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[categoryID]; exists {
		return fmt.Errorf("pnl: category %q is already registered", categoryID)
	}
	r.adapters[categoryID] = adapter
	return nil
}

// Categories lists registered category ids in stable order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RunAll fans out every registered adapter concurrently and joins before
// returning. Adapter errors are logged with their category id and replaced
// with zero-amount degraded rollups; only context cancellation propagates as
// an error, cancelling still-pending adapters for this request alone.
func (r *Registry) RunAll(ctx context.Context, window PeriodWindow, filters ReportFilters) (map[string]CategoryRollup, error) {
	r.mu.RLock()
	adapters := make(map[string]Adapter, len(r.adapters))
	for id, a := range r.adapters {
		adapters[id] = a
	}
	r.mu.RUnlock()

	results := make(map[string]CategoryRollup, len(adapters))
	var resultsMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for id, adapter := range adapters {
		g.Go(func() error {
			rollup, err := adapter.Aggregate(ctx, window, filters)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Warn("source adapter degraded",
					slog.String("category", id),
					slog.String("window", window.Label),
					slog.Any("error", err))
				rollup = CategoryRollup{CategoryID: id, Degraded: true}
			}
			rollup.CategoryID = id
			resultsMu.Lock()
			results[id] = rollup
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
