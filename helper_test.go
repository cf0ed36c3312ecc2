package fillbook

import (
	"fmt"
	"time"
)

const (
	testAccount    = "ACC-001"
	testInstrument = "NQ"
)

// ts parses an RFC 3339 timestamp for test fixtures.
func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(fmt.Sprintf("bad test timestamp %q: %v", s, err))
	}
	return t
}

// fill builds a test execution on the default test account and instrument.
func fill(id string, side Side, quantity int64, price float64, at string) Execution {
	return Execution{
		ID:         id,
		Account:    testAccount,
		Instrument: testInstrument,
		Side:       side,
		Quantity:   quantity,
		Price:      P(price),
		Time:       ts(at),
	}
}

// testTable returns a multiplier table mapping the default test instrument
// to 20 dollars per point.
func testTable() MultiplierTable {
	table, err := NewMultiplierTable(map[string]string{testInstrument: "20"})
	if err != nil {
		panic(err)
	}
	return table
}
