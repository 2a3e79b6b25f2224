package pnl

import (
	"context"
	"fmt"
	"log/slog"
)

// CostHighlight names the category contributing the most cost.
type CostHighlight struct {
	CategoryID string  `json:"categoryId"`
	Amount     float64 `json:"amount"`
}

// AnalysisReport carries derived alerts and recommendations for a window.
type AnalysisReport struct {
	Window               PeriodWindow   `json:"window"`
	Margin               float64        `json:"margin"`
	MarginBelowThreshold bool           `json:"marginBelowThreshold"`
	HighestCost          *CostHighlight `json:"highestCost,omitempty"`
	RevenueDelta         *float64       `json:"revenueDelta,omitempty"`
	NetProfitDelta       *float64       `json:"netProfitDelta,omitempty"`
	Warnings             []string       `json:"warnings,omitempty"`
	Recommendations      []string       `json:"recommendations,omitempty"`
}

// Analysis derives alerts from the composed statement: highest cost center,
// margin-below-threshold warning, degraded-source notices and
// period-over-period deltas against the preceding window.
func (s *Service) Analysis(ctx context.Context, q ReportQuery) (AnalysisReport, error) {
	window, err := s.resolveWindow(q)
	if err != nil {
		return AnalysisReport{}, err
	}
	statement, err := s.Statement(ctx, window, q.Filters)
	if err != nil {
		return AnalysisReport{}, err
	}

	report := AnalysisReport{
		Window: window,
		Margin: statement.Totals.Margin,
	}

	if highest := highestCostItem(statement); highest != nil {
		report.HighestCost = highest
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%s is the largest cost center at %.2f; review its drivers first", highest.CategoryID, highest.Amount))
	}

	if statement.Totals.TotalRevenue > 0 && statement.Totals.Margin < s.marginThreshold {
		report.MarginBelowThreshold = true
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("net margin %.2f%% is below the %.2f%% threshold", statement.Totals.Margin, s.marginThreshold))
	}

	for _, category := range statement.DegradedCategories {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("category %s is degraded and reported as zero", category))
	}

	mode := q.Mode
	if mode == "" {
		mode = PeriodMonthly
	}
	previous := PreviousWindow(window, mode)
	prevStatement, err := s.Statement(ctx, previous, q.Filters)
	if err != nil {
		// Deltas are best effort; the analysis itself must not fail because
		// the preceding window could not be computed.
		s.logger.Warn("previous window statement unavailable", slog.Any("error", err))
		return report, nil
	}
	revenueDelta := statement.Totals.TotalRevenue - prevStatement.Totals.TotalRevenue
	netProfitDelta := statement.Totals.NetProfit - prevStatement.Totals.NetProfit
	report.RevenueDelta = &revenueDelta
	report.NetProfitDelta = &netProfitDelta
	if revenueDelta < 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("revenue fell %.2f versus %s", -revenueDelta, previous.Label))
	}
	return report, nil
}

func highestCostItem(statement Statement) *CostHighlight {
	var highest *CostHighlight
	for _, section := range statement.Sections {
		if section.ID != SectionExpenses {
			continue
		}
		for _, item := range section.Items {
			if item.Amount <= 0 {
				continue
			}
			if highest == nil || item.Amount > highest.Amount {
				highest = &CostHighlight{CategoryID: item.ID, Amount: item.Amount}
			}
		}
	}
	return highest
}
