package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/tradelytics/fillbook"
)

func closedLong(t *testing.T) fillbook.Position {
	t.Helper()
	entry, err := time.Parse(time.RFC3339, "2025-03-03T09:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	exit := entry.Add(15 * time.Minute)
	avgExit := fillbook.P(25030)
	pnl := fillbook.P(3000)
	return fillbook.Position{
		Account:           "ACC-001",
		Instrument:        "NQ",
		Direction:         fillbook.Long,
		Status:            fillbook.Closed,
		EntryTime:         entry,
		ExitTime:          &exit,
		MaxQuantity:       5,
		ExecutionRefs:     []string{"E1", "E2"},
		AverageEntryPrice: fillbook.P(25000),
		AverageExitPrice:  &avgExit,
		PointsPnL:         fillbook.P(150),
		DollarsPnL:        &pnl,
		MatchedQuantity:   5,
	}
}

func TestPositionsMarkdown(t *testing.T) {
	md := PositionsMarkdown([]fillbook.Position{closedLong(t)})

	for _, want := range []string{
		"## Account ACC-001",
		"| NQ | LONG | CLOSED |",
		"$3,000.00",
		"Total realized P&L: $3,000.00",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report does not contain %q:\n%s", want, md)
		}
	}
}

func TestPositionsMarkdown_UnmappedInstrument(t *testing.T) {
	p := closedLong(t)
	p.DollarsPnL = nil

	md := PositionsMarkdown([]fillbook.Position{p})

	if !strings.Contains(md, "n/a") {
		t.Errorf("unmapped dollars not marked n/a:\n%s", md)
	}
	if !strings.Contains(md, "incomplete") {
		t.Errorf("total not marked incomplete:\n%s", md)
	}
}

func TestPositionsMarkdown_Empty(t *testing.T) {
	md := PositionsMarkdown(nil)
	if !strings.Contains(md, "No positions.") {
		t.Errorf("empty report = %q", md)
	}
}
