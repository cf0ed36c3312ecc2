package fillbook

import (
	"fmt"
	"time"
)

// Side is a typed string identifying how an execution was entered at the
// broker.
type Side string

// Sides reported by the broker. SELL_SHORT and BUY_TO_COVER carry the same
// quantity signs as SELL and BUY; positions care about the sign, not the
// label (see CalculatePnL).
const (
	Buy        Side = "BUY"
	Sell       Side = "SELL"
	SellShort  Side = "SELL_SHORT"
	BuyToCover Side = "BUY_TO_COVER"
)

// ParseSide parses a side label as found in broker exports.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Buy, Sell, SellShort, BuyToCover:
		return Side(s), nil
	default:
		return "", fmt.Errorf("unknown side: %q", s)
	}
}

// Sign returns +1 for sides that increase the running quantity and -1 for
// sides that decrease it.
func (s Side) Sign() int64 {
	switch s {
	case Buy, BuyToCover:
		return +1
	case Sell, SellShort:
		return -1
	default:
		return 0
	}
}

// Execution is one atomic broker fill. Executions are created once by the
// import layer and are read-only to this package.
type Execution struct {
	ID         string    // broker execution id, may be empty
	Account    string    // owning account
	Instrument string    // traded instrument symbol
	Side       Side      // BUY, SELL, SELL_SHORT or BUY_TO_COVER
	Quantity   int64     // always positive
	Price      Price     // fill price
	Time       time.Time // fill timestamp
}

// SignedQuantity returns the execution's contribution to the running signed
// quantity: +Quantity for BUY/BUY_TO_COVER, -Quantity for SELL/SELL_SHORT.
func (e Execution) SignedQuantity() int64 {
	return e.Side.Sign() * e.Quantity
}

// Validate checks the fields every downstream stage relies on. A failure
// here is a MalformedExecutionError for the whole partition: the analyzer
// never skips a bad row silently.
func (e Execution) Validate() error {
	switch {
	case e.Account == "":
		return &MalformedExecutionError{Execution: e, Reason: "missing account"}
	case e.Instrument == "":
		return &MalformedExecutionError{Execution: e, Reason: "missing instrument"}
	case e.Side.Sign() == 0:
		return &MalformedExecutionError{Execution: e, Reason: fmt.Sprintf("unknown side %q", e.Side)}
	case e.Quantity <= 0:
		return &MalformedExecutionError{Execution: e, Reason: fmt.Sprintf("non-positive quantity %d", e.Quantity)}
	case e.Time.IsZero():
		return &MalformedExecutionError{Execution: e, Reason: "missing timestamp"}
	case e.Price.IsNegative() || e.Price.IsZero():
		return &MalformedExecutionError{Execution: e, Reason: "non-positive price"}
	}
	return nil
}

// Ref returns the identifier used to reference this execution from a
// Position: the broker id when present, otherwise the same composite key
// the deduplicator falls back to, so that id-less rows stay traceable.
func (e Execution) Ref() string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%s|%s|%s", e.Time.UTC().Format(time.RFC3339Nano), e.Side, e.Price)
}
