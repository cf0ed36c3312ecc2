package fillbook

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// this file handles the broker import format and the position export format.
// Import stays strict: a row the parser cannot read is an import error with
// its line number, never a silently skipped fill.

// executionHeader is the expected header of a broker CSV export. The
// execution_id column may be empty on any row; deduplication then falls
// back to the (timestamp, side, price) key.
var executionHeader = []string{"execution_id", "account", "instrument", "side", "quantity", "price", "timestamp"}

// ImportExecutions reads raw executions from a broker CSV export.
//
// Each row is one fill: execution_id (may be empty), account, instrument,
// side (BUY, SELL, SELL_SHORT, BUY_TO_COVER), quantity (positive integer),
// price (decimal) and timestamp (RFC 3339). Rows are returned in file
// order; validation beyond parseability belongs to the rebuild pipeline.
func ImportExecutions(r io.Reader) ([]Execution, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read executions header: %w", err)
	}
	for i, col := range executionHeader {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("unexpected executions header %v, want %v", header, executionHeader)
		}
	}

	var execs []Execution
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read executions line %d: %w", line, err)
		}
		e, err := parseExecution(record)
		if err != nil {
			return nil, fmt.Errorf("cannot parse executions line %d: %w", line, err)
		}
		execs = append(execs, e)
	}
	return execs, nil
}

func parseExecution(record []string) (Execution, error) {
	if len(record) != len(executionHeader) {
		return Execution{}, fmt.Errorf("got %d fields, want %d", len(record), len(executionHeader))
	}
	side, err := ParseSide(strings.TrimSpace(record[3]))
	if err != nil {
		return Execution{}, err
	}
	quantity, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
	if err != nil {
		return Execution{}, fmt.Errorf("invalid quantity %q: %w", record[4], err)
	}
	price, err := ParsePrice(strings.TrimSpace(record[5]))
	if err != nil {
		return Execution{}, fmt.Errorf("invalid price %q: %w", record[5], err)
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[6]))
	if err != nil {
		return Execution{}, fmt.Errorf("invalid timestamp %q: %w", record[6], err)
	}
	return Execution{
		ID:         strings.TrimSpace(record[0]),
		Account:    strings.TrimSpace(record[1]),
		Instrument: strings.TrimSpace(record[2]),
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Time:       ts,
	}, nil
}

// jposition is the readable form of the position export format.
type jposition struct {
	Account           string   `json:"account"`
	Instrument        string   `json:"instrument"`
	Direction         string   `json:"direction"`
	Status            string   `json:"status"`
	EntryTime         string   `json:"entry_time"`
	ExitTime          string   `json:"exit_time,omitempty"`
	TotalQuantity     int64    `json:"total_quantity"`
	MaxQuantity       int64    `json:"max_quantity"`
	ExecutionRefs     []string `json:"execution_refs"`
	AverageEntryPrice string   `json:"average_entry_price"`
	AverageExitPrice  string   `json:"average_exit_price,omitempty"`
	PointsPnL         string   `json:"points_pnl"`
	DollarsPnL        string   `json:"dollars_pnl,omitempty"`
	MatchedQuantity   int64    `json:"matched_quantity"`
}

// ExportPositions writes positions to 'w' as JSONL, one position per line,
// in a human readable form that is easy to merge downstream. Decimal values
// are exported as strings to keep them exact.
func ExportPositions(w io.Writer, positions []Position) error {
	for _, p := range positions {
		jp := jposition{
			Account:           p.Account,
			Instrument:        p.Instrument,
			Direction:         string(p.Direction),
			Status:            string(p.Status),
			EntryTime:         p.EntryTime.UTC().Format(time.RFC3339Nano),
			TotalQuantity:     p.TotalQuantity,
			MaxQuantity:       p.MaxQuantity,
			ExecutionRefs:     p.ExecutionRefs,
			AverageEntryPrice: p.AverageEntryPrice.String(),
			PointsPnL:         p.PointsPnL.String(),
			MatchedQuantity:   p.MatchedQuantity,
		}
		if p.ExitTime != nil {
			jp.ExitTime = p.ExitTime.UTC().Format(time.RFC3339Nano)
		}
		if p.AverageExitPrice != nil {
			jp.AverageExitPrice = p.AverageExitPrice.String()
		}
		if p.DollarsPnL != nil {
			jp.DollarsPnL = p.DollarsPnL.String()
		}
		data, err := json.Marshal(jp)
		if err != nil {
			return fmt.Errorf("cannot export position %s/%s: %w", p.Account, p.Instrument, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}
