// Package renderer turns rebuilt positions into markdown reports.
package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/tradelytics/fillbook"
)

// PositionsMarkdown renders a positions report, one section per account,
// with a P&L total per account. Dollar amounts are formatted as USD; an
// unmapped instrument shows "n/a" for dollars rather than a fabricated
// zero.
func PositionsMarkdown(positions []fillbook.Position) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Positions Report\n\n")
	if len(positions) == 0 {
		fmt.Fprint(&b, "No positions.\n")
		return b.String()
	}

	for _, account := range accounts(positions) {
		fmt.Fprintf(&b, "## Account %s\n\n", account)
		fmt.Fprintln(&b, "| Instrument | Direction | Status | Entered | Exited | Size | Peak | Avg Entry | Avg Exit | Points | P&L |")
		fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|")

		var (
			totalDollars fillbook.Price
			unmapped     bool
		)
		for _, p := range positions {
			if p.Account != account {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %d | %s | %s | %s | %s |\n",
				p.Instrument, p.Direction, p.Status,
				p.EntryTime.UTC().Format(time.RFC3339),
				formatExit(p.ExitTime),
				p.TotalQuantity, p.MaxQuantity,
				p.AverageEntryPrice, formatPrice(p.AverageExitPrice),
				p.PointsPnL, formatDollars(p.DollarsPnL))
			if p.DollarsPnL == nil {
				unmapped = true
			} else {
				totalDollars = totalDollars.Add(*p.DollarsPnL)
			}
		}

		if unmapped {
			fmt.Fprintf(&b, "\nTotal realized P&L: %s (incomplete: unmapped instruments excluded)\n\n", dollars(totalDollars))
		} else {
			fmt.Fprintf(&b, "\nTotal realized P&L: %s\n\n", dollars(totalDollars))
		}
	}
	return b.String()
}

func accounts(positions []fillbook.Position) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range positions {
		if !seen[p.Account] {
			seen[p.Account] = true
			out = append(out, p.Account)
		}
	}
	return out
}

func formatExit(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatPrice(p *fillbook.Price) string {
	if p == nil {
		return "-"
	}
	return p.String()
}

func formatDollars(p *fillbook.Price) string {
	if p == nil {
		return "n/a"
	}
	return dollars(*p)
}

// dollars formats a dollar P&L amount with the USD currency conventions.
func dollars(p fillbook.Price) string {
	cents := p.Decimal().Shift(2).Round(0)
	return money.New(cents.IntPart(), money.USD).Display()
}
