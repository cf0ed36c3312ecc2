package fillbook

import (
	"errors"
	"fmt"
)

// ErrUnmappedInstrument reports a multiplier lookup miss. Points P&L is
// still computed; dollar P&L is left unset rather than defaulted to zero.
var ErrUnmappedInstrument = errors.New("instrument has no multiplier mapping")

// MalformedExecutionError fails an entire partition run: a missing required
// field, a non-positive quantity, or an execution that is chronologically
// out of order relative to already-processed executions. There is no partial
// recovery; the caller decides whether to fix the upstream data and retry.
type MalformedExecutionError struct {
	Execution Execution
	Reason    string
}

func (e *MalformedExecutionError) Error() string {
	return fmt.Sprintf("malformed execution %s/%s at %s: %s",
		e.Execution.Account, e.Execution.Instrument, e.Execution.Ref(), e.Reason)
}

// InvariantViolationError reports a structurally inconsistent position
// detected while finalizing it. This is a defect in the builder, never
// something to patch around.
type InvariantViolationError struct {
	Position Position
	Reason   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("position invariant violated for %s/%s: %s",
		e.Position.Account, e.Position.Instrument, e.Reason)
}
