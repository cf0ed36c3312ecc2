package fillbook

import (
	"fmt"
	"strings"
)

// MultiplierTable maps instrument symbols to their contract multiplier
// (dollars per point). The table is immutable for the duration of a run,
// so it is safe to share across concurrently processed partitions without
// locking. Symbols are matched case-insensitively: configuration loaders
// are allowed to fold key case.
type MultiplierTable struct {
	multipliers map[string]Price
}

// NewMultiplierTable builds a table from decimal multiplier literals, as
// found in the configuration file.
func NewMultiplierTable(multipliers map[string]string) (MultiplierTable, error) {
	m := make(map[string]Price, len(multipliers))
	for instrument, raw := range multipliers {
		p, err := ParsePrice(raw)
		if err != nil {
			return MultiplierTable{}, fmt.Errorf("invalid multiplier %q for instrument %q: %w", raw, instrument, err)
		}
		if !p.IsPositive() {
			return MultiplierTable{}, fmt.Errorf("multiplier for instrument %q must be positive, got %q", instrument, raw)
		}
		m[strings.ToUpper(instrument)] = p
	}
	return MultiplierTable{multipliers: m}, nil
}

// Lookup returns the instrument's multiplier, or nil when the instrument is
// unmapped. Callers keep computing point P&L on a miss and leave dollar P&L
// unset; see ErrUnmappedInstrument.
func (t MultiplierTable) Lookup(instrument string) *Price {
	p, ok := t.multipliers[strings.ToUpper(instrument)]
	if !ok {
		return nil
	}
	return &p
}
