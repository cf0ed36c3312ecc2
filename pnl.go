package fillbook

// PnLCalculation is the result of FIFO-matching one position's executions.
// It is folded into the Position aggregate by the builder.
type PnLCalculation struct {
	PointsPnL         Price
	DollarsPnL        *Price // nil when the instrument multiplier is unmapped
	AverageEntryPrice Price
	AverageExitPrice  *Price // nil while no exit has matched
	MatchedQuantity   int64
}

// CalculatePnL matches a position's entry and exit executions first-in
// first-out and computes realized P&L in points and, when a multiplier is
// supplied, in dollars.
//
// Executions are classified relative to the position's direction, not their
// literal side label: for a LONG position BUY and BUY_TO_COVER are entries
// and SELL and SELL_SHORT are exits; for a SHORT position the sets swap.
// FIFO is the only matching order that yields a single reproducible P&L:
// pairing the same executions in another order changes the reported total
// even though quantities and prices are identical.
//
// The average entry price is quantity-weighted over all entries, matched or
// not, since entries allocate capital before any exit. The average exit
// price is weighted over matched exits only and is nil when nothing has
// matched yet. A nil multiplier leaves DollarsPnL nil; it is never
// defaulted to zero.
func CalculatePnL(direction Direction, execs []Execution, multiplier *Price) PnLCalculation {
	entrySign := int64(+1)
	if direction == Short {
		entrySign = -1
	}

	var entries, exits []Execution
	for _, e := range execs {
		if e.Side.Sign() == entrySign {
			entries = append(entries, e)
		} else {
			exits = append(exits, e)
		}
	}

	var calc PnLCalculation

	// FIFO two-pointer match. Both lists inherit the position's timestamp
	// order, so walking them front to front pairs the earliest unmatched
	// entry with the earliest unmatched exit.
	var (
		ei, xi              int
		entryLeft, exitLeft int64
		exitCost            Price // matched exit quantity * price, accumulated
	)
	for ei < len(entries) && xi < len(exits) {
		if entryLeft == 0 {
			entryLeft = entries[ei].Quantity
		}
		if exitLeft == 0 {
			exitLeft = exits[xi].Quantity
		}

		matched := min(entryLeft, exitLeft)
		points := exits[xi].Price.Sub(entries[ei].Price)
		if direction == Short {
			points = entries[ei].Price.Sub(exits[xi].Price)
		}
		calc.PointsPnL = calc.PointsPnL.Add(points.MulInt(matched))
		exitCost = exitCost.Add(exits[xi].Price.MulInt(matched))
		calc.MatchedQuantity += matched

		entryLeft -= matched
		exitLeft -= matched
		if entryLeft == 0 {
			ei++
		}
		if exitLeft == 0 {
			xi++
		}
	}

	var entryCost Price
	var entryQty int64
	for _, e := range entries {
		entryCost = entryCost.Add(e.Price.MulInt(e.Quantity))
		entryQty += e.Quantity
	}
	if entryQty > 0 {
		calc.AverageEntryPrice = entryCost.DivInt(entryQty)
	}
	if calc.MatchedQuantity > 0 {
		avgExit := exitCost.DivInt(calc.MatchedQuantity)
		calc.AverageExitPrice = &avgExit
	}
	if multiplier != nil {
		dollars := calc.PointsPnL.Mul(*multiplier)
		calc.DollarsPnL = &dollars
	}
	return calc
}
