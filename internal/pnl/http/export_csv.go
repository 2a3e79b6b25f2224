package pnlhttp

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func writeStatementCSV(w io.Writer, statement pnl.Statement) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment("# Report: Profit & Loss Statement"); err != nil {
		return err
	}
	window := fmt.Sprintf("# Window: %s | %s to %s",
		statement.Window.Label,
		statement.Window.Start.Format(dateLayout),
		statement.Window.End.AddDate(0, 0, -1).Format(dateLayout))
	if err := streamer.writeComment(window); err != nil {
		return err
	}
	if len(statement.DegradedCategories) > 0 {
		if err := streamer.writeComment("# Degraded: " + strings.Join(statement.DegradedCategories, "; ")); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"Section", "Item", "Description", "Source", "Amount"}); err != nil {
		return err
	}
	for _, section := range statement.Sections {
		for _, item := range section.Items {
			if err := streamer.writeRow([]string{
				section.ID,
				item.ID,
				item.Description,
				item.SourceModule,
				formatDecimal(item.Amount),
			}); err != nil {
				return err
			}
		}
		if err := streamer.writeRow([]string{section.ID, "", "Subtotal", "", formatDecimal(section.Subtotal)}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", ""}); err != nil {
		return err
	}
	totalsRows := [][]string{
		{"Totals", "", "Net Operating Revenue", "", formatDecimal(statement.Totals.NetOperatingRevenue)},
		{"Totals", "", "Total Revenue", "", formatDecimal(statement.Totals.TotalRevenue)},
		{"Totals", "", "Total Expenses", "", formatDecimal(statement.Totals.TotalExpenses)},
		{"Totals", "", "EBITDA", "", formatDecimal(statement.Totals.EBITDA)},
		{"Totals", "", "Net Profit", "", formatDecimal(statement.Totals.NetProfit)},
		{"Totals", "", "Margin %", "", formatDecimal(statement.Totals.Margin)},
	}
	for _, row := range totalsRows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.Flush()
}

func formatDecimal(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// handleExportCSV serves the statement as a CSV download.
func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	statement, err := h.loadStatement(w, r)
	if err != nil {
		return
	}
	filename := fmt.Sprintf("pnl-%s-%s.csv",
		statement.Window.Start.Format(dateLayout),
		statement.Window.End.AddDate(0, 0, -1).Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := writeStatementCSV(w, statement); err != nil {
		h.logger.Error("stream pnl csv", slog.Any("error", err))
	}
}
