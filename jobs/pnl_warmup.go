package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/fieldline-erp/fieldline-erp/internal/jobs"
	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

var defaultWarmupModes = []pnl.PeriodMode{
	pnl.PeriodMonthly,
	pnl.PeriodQuarterly,
	pnl.PeriodYearly,
}

// PnLWarmupJob pre-builds the current reporting windows so the first
// dashboard request after a cache invalidation does not pay the full
// aggregation cost.
type PnLWarmupJob struct {
	Service *pnl.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPnLWarmupJob wires dependencies for the warmup handler.
func NewPnLWarmupJob(service *pnl.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *PnLWarmupJob {
	return &PnLWarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *PnLWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("pnl warmup: handler not configured")
	}
	var payload PnLWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	modes := defaultWarmupModes
	if len(payload.Modes) > 0 {
		modes = make([]pnl.PeriodMode, 0, len(payload.Modes))
		for _, raw := range payload.Modes {
			modes = append(modes, pnl.PeriodMode(raw))
		}
	}

	tracker := j.metrics().Track(TaskPnLWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting report warmup", slog.Int("modes", len(modes)))

	now := j.now()
	warmed := 0
	for _, mode := range modes {
		window, err := pnl.ResolveWindow(mode, nil, nil, now)
		if err != nil {
			resultErr = err
			logger.Error("resolve warmup window", slog.String("mode", string(mode)), slog.Any("error", err))
			return resultErr
		}
		// Each window gets its own timeout so one slow build cannot pin the
		// whole job.
		windowCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		_, err = j.Service.Statement(windowCtx, window, pnl.ReportFilters{})
		cancel()
		if err != nil {
			resultErr = err
			logger.Error("warm report window", slog.String("mode", string(mode)), slog.String("window", window.Label), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed report warmup", slog.Int("windows", warmed), slog.Duration("duration", time.Since(now)))
	return resultErr
}

func (j *PnLWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPnLWarmup))
	}
	return slog.Default().With(slog.String("job", TaskPnLWarmup))
}

func (j *PnLWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *PnLWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
