package fillbook

import (
	"fmt"
	"time"
)

// FlowKind tags the lifecycle transition an execution caused.
type FlowKind string

const (
	// FlowStart opens a position: the running quantity left zero.
	FlowStart FlowKind = "position_start"
	// FlowModify scales a position without changing its sign.
	FlowModify FlowKind = "position_modify"
	// FlowClose returns the running quantity to exactly zero.
	FlowClose FlowKind = "position_close"
	// FlowReversal crosses through zero to the other side: it closes the
	// current position and opens a new one in the opposite direction with
	// the remainder of the same execution.
	FlowReversal FlowKind = "position_reversal"
)

// FlowEvent is one lifecycle transition, carrying the triggering execution
// and the running signed quantity before and after it. Events exist only
// between AnalyzeFlow and BuildPositions; they are never persisted.
type FlowEvent struct {
	Kind      FlowKind
	Execution Execution
	Previous  int64 // running quantity before the execution
	Current   int64 // running quantity after the execution

	// Set on FlowReversal only: how much of the execution closed the old
	// position and how much opened the new one.
	ClosingQuantity int64
	OpeningQuantity int64
}

// AnalyzeFlow folds a chronologically ordered, deduplicated execution
// sequence for one (account, instrument) partition into lifecycle events.
//
// Ordering is a precondition, not something corrected here: an execution
// earlier than an already-processed one fails the run. Zero-quantity
// executions fail it too; both are MalformedExecutionError.
func AnalyzeFlow(execs []Execution) ([]FlowEvent, error) {
	var (
		events  []FlowEvent
		running int64
	)

	for i, e := range execs {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && e.Time.Before(execs[i-1].Time) {
			return nil, &MalformedExecutionError{
				Execution: e,
				Reason: fmt.Sprintf("out of order: %s is before previous execution at %s",
					e.Time.Format(time.RFC3339Nano),
					execs[i-1].Time.Format(time.RFC3339Nano)),
			}
		}

		next := running + e.SignedQuantity()
		ev := FlowEvent{Execution: e, Previous: running, Current: next}

		switch {
		case running == 0:
			// Quantity is validated positive, so next is never zero here.
			ev.Kind = FlowStart
		case next == 0:
			ev.Kind = FlowClose
		case sameSign(running, next):
			ev.Kind = FlowModify
		default:
			ev.Kind = FlowReversal
			ev.ClosingQuantity = abs(running)
			ev.OpeningQuantity = abs(next)
		}

		events = append(events, ev)
		running = next
	}
	return events, nil
}

func sameSign(a, b int64) bool {
	return (a > 0) == (b > 0)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
