package fillbook

import (
	"fmt"
	"time"
)

// Direction of a position's exposure.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Status of a position's lifecycle.
type Status string

const (
	Open   Status = "OPEN"
	Closed Status = "CLOSED"
)

// Position aggregates all executions forming one continuous non-zero
// holding period for an (account, instrument) pair.
//
// TotalQuantity is the currently open size and drops to zero once the
// position closes; MaxQuantity keeps the largest size ever held. While the
// position is OPEN the P&L fields cover only the matched portion of its
// executions: AverageExitPrice is nil until at least one exit has matched,
// and DollarsPnL is nil whenever the instrument has no multiplier mapping.
type Position struct {
	Account           string
	Instrument        string
	Direction         Direction
	Status            Status
	EntryTime         time.Time
	ExitTime          *time.Time
	TotalQuantity     int64
	MaxQuantity       int64
	ExecutionRefs     []string
	AverageEntryPrice Price
	AverageExitPrice  *Price
	PointsPnL         Price
	DollarsPnL        *Price
	MatchedQuantity   int64
}

// builder is the working state for the position currently being
// accumulated.
type builder struct {
	position Position
	execs    []Execution
}

// BuildPositions folds a partition's lifecycle events into Position
// aggregates, invoking the FIFO P&L calculation as positions close. The
// last position may remain OPEN when the stream ends mid-position; its P&L
// then covers only the matched portion so far.
//
// A structurally inconsistent position detected at finalization is a defect
// and returns an InvariantViolationError; the builder never patches around
// a partially-invalid partition.
func BuildPositions(events []FlowEvent, table MultiplierTable) ([]Position, error) {
	var (
		positions []Position
		cur       *builder
	)

	for _, ev := range events {
		e := ev.Execution
		switch ev.Kind {
		case FlowStart:
			cur = open(e, e.Quantity, directionOf(ev.Current))

		case FlowModify:
			if cur == nil {
				return nil, &InvariantViolationError{Reason: fmt.Sprintf("%s without an open position", ev.Kind)}
			}
			cur.execs = append(cur.execs, e)
			cur.position.ExecutionRefs = append(cur.position.ExecutionRefs, e.Ref())
			cur.position.TotalQuantity = abs(ev.Current)
			cur.position.MaxQuantity = max(cur.position.MaxQuantity, cur.position.TotalQuantity)

		case FlowClose:
			if cur == nil {
				return nil, &InvariantViolationError{Reason: fmt.Sprintf("%s without an open position", ev.Kind)}
			}
			cur.execs = append(cur.execs, e)
			cur.position.ExecutionRefs = append(cur.position.ExecutionRefs, e.Ref())
			closed, err := cur.finalizeClosed(e.Time, table)
			if err != nil {
				return nil, err
			}
			positions = append(positions, closed)
			cur = nil

		case FlowReversal:
			if cur == nil {
				return nil, &InvariantViolationError{Reason: fmt.Sprintf("%s without an open position", ev.Kind)}
			}
			// The closing share of the execution terminates the current
			// position; the remainder opens a fresh one on the other side.
			closing := e
			closing.Quantity = ev.ClosingQuantity
			cur.execs = append(cur.execs, closing)
			cur.position.ExecutionRefs = append(cur.position.ExecutionRefs, e.Ref())
			closed, err := cur.finalizeClosed(e.Time, table)
			if err != nil {
				return nil, err
			}
			positions = append(positions, closed)

			opening := e
			opening.Quantity = ev.OpeningQuantity
			cur = open(opening, ev.OpeningQuantity, directionOf(ev.Current))

		default:
			return nil, &InvariantViolationError{Reason: fmt.Sprintf("unknown flow event kind %q", ev.Kind)}
		}
	}

	if cur != nil {
		tail, err := cur.finalizeOpen(table)
		if err != nil {
			return nil, err
		}
		positions = append(positions, tail)
	}
	return positions, nil
}

func open(e Execution, quantity int64, dir Direction) *builder {
	return &builder{
		position: Position{
			Account:       e.Account,
			Instrument:    e.Instrument,
			Direction:     dir,
			Status:        Open,
			EntryTime:     e.Time,
			TotalQuantity: quantity,
			MaxQuantity:   quantity,
			ExecutionRefs: []string{e.Ref()},
		},
		execs: []Execution{e},
	}
}

func directionOf(running int64) Direction {
	if running < 0 {
		return Short
	}
	return Long
}

func (b *builder) finalizeClosed(exitTime time.Time, table MultiplierTable) (Position, error) {
	p := b.position
	calc := CalculatePnL(p.Direction, b.execs, table.Lookup(p.Instrument))

	p.Status = Closed
	p.ExitTime = &exitTime
	p.TotalQuantity = 0
	b.apply(&p, calc)

	switch {
	case p.ExitTime == nil || p.ExitTime.IsZero():
		return Position{}, &InvariantViolationError{Position: p, Reason: "closed position without exit time"}
	case p.AverageExitPrice == nil:
		return Position{}, &InvariantViolationError{Position: p, Reason: "closed position without exit price"}
	case calc.MatchedQuantity != entryQuantity(p.Direction, b.execs):
		return Position{}, &InvariantViolationError{Position: p, Reason: fmt.Sprintf(
			"closed position matched %d of %d entered", calc.MatchedQuantity, entryQuantity(p.Direction, b.execs))}
	}
	return p, nil
}

func (b *builder) finalizeOpen(table MultiplierTable) (Position, error) {
	p := b.position
	calc := CalculatePnL(p.Direction, b.execs, table.Lookup(p.Instrument))
	b.apply(&p, calc)

	if p.ExitTime != nil || p.TotalQuantity == 0 {
		return Position{}, &InvariantViolationError{Position: p, Reason: "open position with exit fields set"}
	}
	return p, nil
}

func (b *builder) apply(p *Position, calc PnLCalculation) {
	p.AverageEntryPrice = calc.AverageEntryPrice
	p.AverageExitPrice = calc.AverageExitPrice
	p.PointsPnL = calc.PointsPnL
	p.DollarsPnL = calc.DollarsPnL
	p.MatchedQuantity = calc.MatchedQuantity
}

// entryQuantity totals the quantity of entry-side executions, used to check
// conservation when a position closes.
func entryQuantity(dir Direction, execs []Execution) int64 {
	entrySign := int64(+1)
	if dir == Short {
		entrySign = -1
	}
	var total int64
	for _, e := range execs {
		if e.Side.Sign() == entrySign {
			total += e.Quantity
		}
	}
	return total
}
