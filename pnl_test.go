package fillbook

import "testing"

func TestCalculatePnL_FIFOOrdering(t *testing.T) {
	// FIFO pairs the earliest entry with the earliest exit:
	// (25030-25000)*2 + (25040-25010)*3 = 150. A non-FIFO pairing of the
	// same executions would report 140.
	execs := []Execution{
		fill("E1", Buy, 2, 25000, "2025-03-03T09:30:00Z"),
		fill("E2", Buy, 3, 25010, "2025-03-03T09:31:00Z"),
		fill("E3", Sell, 2, 25030, "2025-03-03T09:32:00Z"),
		fill("E4", Sell, 3, 25040, "2025-03-03T09:33:00Z"),
	}
	multiplier := P(20)

	calc := CalculatePnL(Long, execs, &multiplier)

	if !calc.PointsPnL.Equal(P(150)) {
		t.Errorf("PointsPnL = %s, want 150", calc.PointsPnL)
	}
	if calc.DollarsPnL == nil || !calc.DollarsPnL.Equal(P(3000)) {
		t.Errorf("DollarsPnL = %v, want 3000", calc.DollarsPnL)
	}
	if calc.MatchedQuantity != 5 {
		t.Errorf("MatchedQuantity = %d, want 5", calc.MatchedQuantity)
	}
}

func TestCalculatePnL_ShortDirection(t *testing.T) {
	// For a short, SELL_SHORT is the entry and BUY_TO_COVER the exit;
	// profit when price falls.
	execs := []Execution{
		fill("E1", SellShort, 5, 25050, "2025-03-03T09:30:00Z"),
		fill("E2", BuyToCover, 5, 25000, "2025-03-03T09:31:00Z"),
	}

	calc := CalculatePnL(Short, execs, nil)

	if !calc.PointsPnL.Equal(P(250)) {
		t.Errorf("PointsPnL = %s, want 250", calc.PointsPnL)
	}
	if !calc.AverageEntryPrice.Equal(P(25050)) {
		t.Errorf("AverageEntryPrice = %s, want 25050", calc.AverageEntryPrice)
	}
	if calc.AverageExitPrice == nil || !calc.AverageExitPrice.Equal(P(25000)) {
		t.Errorf("AverageExitPrice = %v, want 25000", calc.AverageExitPrice)
	}
}

func TestCalculatePnL_OpenPartialMatch(t *testing.T) {
	// Two entries, one partial exit: P&L covers the matched 2 lots, the
	// average entry still weighs all 5 entered.
	execs := []Execution{
		fill("E1", Buy, 2, 25000, "2025-03-03T09:30:00Z"),
		fill("E2", Buy, 3, 25010, "2025-03-03T09:31:00Z"),
		fill("E3", Sell, 2, 25030, "2025-03-03T09:32:00Z"),
	}

	calc := CalculatePnL(Long, execs, nil)

	if !calc.PointsPnL.Equal(P(60)) {
		t.Errorf("PointsPnL = %s, want 60", calc.PointsPnL)
	}
	if !calc.AverageEntryPrice.Equal(P(25006)) {
		t.Errorf("AverageEntryPrice = %s, want 25006", calc.AverageEntryPrice)
	}
	if calc.AverageExitPrice == nil || !calc.AverageExitPrice.Equal(P(25030)) {
		t.Errorf("AverageExitPrice = %v, want 25030", calc.AverageExitPrice)
	}
	if calc.MatchedQuantity != 2 {
		t.Errorf("MatchedQuantity = %d, want 2", calc.MatchedQuantity)
	}
}

func TestCalculatePnL_NoExits(t *testing.T) {
	execs := []Execution{
		fill("E1", Buy, 2, 25000, "2025-03-03T09:30:00Z"),
	}

	calc := CalculatePnL(Long, execs, nil)

	if !calc.PointsPnL.IsZero() {
		t.Errorf("PointsPnL = %s, want 0", calc.PointsPnL)
	}
	if calc.AverageExitPrice != nil {
		t.Errorf("AverageExitPrice = %s, want nil", calc.AverageExitPrice)
	}
	if calc.MatchedQuantity != 0 {
		t.Errorf("MatchedQuantity = %d, want 0", calc.MatchedQuantity)
	}
}

func TestCalculatePnL_UnmappedMultiplier(t *testing.T) {
	execs := []Execution{
		fill("E1", Buy, 2, 25000, "2025-03-03T09:30:00Z"),
		fill("E2", Sell, 2, 25030, "2025-03-03T09:31:00Z"),
	}

	calc := CalculatePnL(Long, execs, nil)

	// Points are still computed; dollars stay explicitly absent, never a
	// silent zero.
	if !calc.PointsPnL.Equal(P(60)) {
		t.Errorf("PointsPnL = %s, want 60", calc.PointsPnL)
	}
	if calc.DollarsPnL != nil {
		t.Errorf("DollarsPnL = %s, want nil", calc.DollarsPnL)
	}
}

func TestCalculatePnL_FractionalPrices(t *testing.T) {
	// Decimal arithmetic keeps quarter-tick prices exact.
	execs := []Execution{
		fill("E1", Buy, 3, 0, "2025-03-03T09:30:00Z"),
		fill("E2", Sell, 3, 0, "2025-03-03T09:31:00Z"),
	}
	execs[0].Price, _ = ParsePrice("25000.25")
	execs[1].Price, _ = ParsePrice("25000.50")

	calc := CalculatePnL(Long, execs, nil)

	want, _ := ParsePrice("0.75")
	if !calc.PointsPnL.Equal(want) {
		t.Errorf("PointsPnL = %s, want 0.75", calc.PointsPnL)
	}
}
