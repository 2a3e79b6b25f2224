package pnl

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TrendPoint is one data point of the charting series: the headline
// subtotals for one sub-window plus derived margins. Margins are 0 when
// revenue is 0, never a division fault.
type TrendPoint struct {
	Label       string  `json:"label"`
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	EBITDA      float64 `json:"ebitda"`
	NetProfit   float64 `json:"netProfit"`
	GrossMargin float64 `json:"grossMargin"`
	NetMargin   float64 `json:"netMargin"`
	Degraded    bool    `json:"degraded,omitempty"`
}

// ChartReport is the Trend Generator output for one window.
type ChartReport struct {
	Window PeriodWindow `json:"window"`
	Mode   PeriodMode   `json:"mode"`
	Points []TrendPoint `json:"points"`
}

// Charts decomposes the resolved window into calendar-aligned sub-windows
// and composes an independent statement per sub-window. Sub-windows share no
// state, so they run concurrently; results are returned in chronological
// order regardless of completion order.
func (s *Service) Charts(ctx context.Context, q ReportQuery) (ChartReport, error) {
	window, err := s.resolveWindow(q)
	if err != nil {
		return ChartReport{}, err
	}

	granularity := q.Mode
	if granularity == "" || granularity == PeriodCustom {
		granularity = PeriodMonthly
	}
	subWindows := Decompose(window, granularity)

	points := make([]TrendPoint, len(subWindows))
	g, ctx := errgroup.WithContext(ctx)
	for i, sub := range subWindows {
		g.Go(func() error {
			statement, err := s.Statement(ctx, sub, q.Filters)
			if err != nil {
				return err
			}
			points[i] = trendPoint(sub.Label, statement)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ChartReport{}, err
	}

	return ChartReport{Window: window, Mode: granularity, Points: points}, nil
}

func trendPoint(label string, statement Statement) TrendPoint {
	totals := statement.Totals
	point := TrendPoint{
		Label:     label,
		Revenue:   totals.TotalRevenue,
		Expenses:  totals.TotalExpenses,
		EBITDA:    totals.EBITDA,
		NetProfit: totals.NetProfit,
		Degraded:  statement.Degraded,
	}
	if totals.TotalRevenue != 0 {
		point.GrossMargin = (totals.TotalRevenue - totals.TotalExpenses) / totals.TotalRevenue * 100
		point.NetMargin = totals.NetProfit / totals.TotalRevenue * 100
	}
	return point
}
