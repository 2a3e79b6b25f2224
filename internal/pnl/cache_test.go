package pnl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheFetchJSONPopulatesAndHits(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return SummaryReport{Totals: StatementTotals{TotalRevenue: 12500}}, nil
	}

	var first SummaryReport
	require.NoError(t, cache.FetchJSON(ctx, "pnl:test:key", &first, loader))
	assert.Equal(t, 12500.0, first.Totals.TotalRevenue)
	assert.Equal(t, 1, calls)

	var second SummaryReport
	require.NoError(t, cache.FetchJSON(ctx, "pnl:test:key", &second, loader))
	assert.Equal(t, 12500.0, second.Totals.TotalRevenue)
	assert.Equal(t, 1, calls, "second fetch must come from the cache")
}

func TestCacheFetchJSONLoaderErrorIsNotCached(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("source offline")
	var dest SummaryReport
	err := cache.FetchJSON(ctx, "pnl:test:err", &dest, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, cache.FetchJSON(ctx, "pnl:test:err", &dest, func(ctx context.Context) (any, error) {
		return SummaryReport{Totals: StatementTotals{TotalRevenue: 1}}, nil
	}))
	assert.Equal(t, 1.0, dest.Totals.TotalRevenue)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "pnl", "table", "2024-01-01")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "pnl", "table", "2024-01-01")
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "bumping the version must rotate every report key")
}

func TestCacheVersionInitialisesToOne(t *testing.T) {
	cache, _ := newTestCache(t)
	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}

func TestCacheNilClientPassThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	calls := 0
	var dest SummaryReport
	loader := func(ctx context.Context) (any, error) {
		calls++
		return SummaryReport{Totals: StatementTotals{TotalRevenue: 7}}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, "whatever", &dest, loader))
	require.NoError(t, cache.FetchJSON(ctx, "whatever", &dest, loader))
	assert.Equal(t, 2, calls, "without redis every fetch recomputes")
	assert.Equal(t, 7.0, dest.Totals.TotalRevenue)
}

func TestWindowKeyEncodesFilters(t *testing.T) {
	window := PeriodWindow{Start: date(2024, time.January, 1), End: date(2024, time.February, 1)}
	plain := windowKey("table", window, ReportFilters{})
	filtered := windowKey("table", window, ReportFilters{Department: "ops", Site: "north"})
	assert.NotEqual(t, plain, filtered)
	assert.Equal(t, len(plain), len(filtered), "token count is fixed regardless of filters")
}
