package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
)

func warmupService(t *testing.T, adapterErr error) *pnl.Service {
	t.Helper()
	reg := pnl.NewRegistry(slog.Default())
	require.NoError(t, reg.Register(pnl.CategoryOperatingRevenue, pnl.AdapterFunc(
		func(ctx context.Context, window pnl.PeriodWindow, filters pnl.ReportFilters) (pnl.CategoryRollup, error) {
			if adapterErr != nil {
				return pnl.CategoryRollup{}, adapterErr
			}
			return pnl.CategoryRollup{Amount: 100}, nil
		})))
	svc := pnl.NewService(reg, nil, nil, nil, slog.Default(), pnl.ServiceConfig{})
	svc.WithNow(func() time.Time { return time.Date(2024, time.August, 17, 0, 0, 0, 0, time.UTC) })
	return svc
}

func TestPnLWarmupHandleDefaultModes(t *testing.T) {
	job := NewPnLWarmupJob(warmupService(t, nil), slog.Default(), nil)
	job.clock = func() time.Time { return time.Date(2024, time.August, 17, 0, 0, 0, 0, time.UTC) }

	task, err := NewPnLWarmupTask(PnLWarmupPayload{})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
}

func TestPnLWarmupHandleExplicitModes(t *testing.T) {
	job := NewPnLWarmupJob(warmupService(t, nil), slog.Default(), nil)
	job.clock = func() time.Time { return time.Date(2024, time.August, 17, 0, 0, 0, 0, time.UTC) }

	task, err := NewPnLWarmupTask(PnLWarmupPayload{Modes: []string{"monthly"}})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
}

func TestPnLWarmupHandleMalformedPayloadSkipsRetry(t *testing.T) {
	job := NewPnLWarmupJob(warmupService(t, nil), slog.Default(), nil)

	task := asynq.NewTask(TaskPnLWarmup, []byte("{not json"))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestPnLWarmupHandleDegradedSourcesStillSucceed(t *testing.T) {
	// An unreachable source degrades the statement instead of failing it, so
	// the warmup completes and caches the degraded report.
	job := NewPnLWarmupJob(warmupService(t, errors.New("source offline")), slog.Default(), nil)
	job.clock = func() time.Time { return time.Date(2024, time.August, 17, 0, 0, 0, 0, time.UTC) }

	task, err := NewPnLWarmupTask(PnLWarmupPayload{Modes: []string{"monthly"}})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
}

func TestPnLWarmupHandleNotConfigured(t *testing.T) {
	var job *PnLWarmupJob
	task, err := NewPnLWarmupTask(PnLWarmupPayload{})
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}
