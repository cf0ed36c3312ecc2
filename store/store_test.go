package store

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/tradelytics/fillbook"
	"github.com/tradelytics/fillbook/config"
)

func newSampleCSV() io.Reader {
	return strings.NewReader(`execution_id,account,instrument,side,quantity,price,timestamp
E1,ACC-001,NQ,BUY,5,25000,2025-03-03T09:30:00Z
E2,ACC-001,NQ,SELL,8,25050.25,2025-03-03T09:45:00Z
`)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.Database{InMemory: true}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testExecutions(t *testing.T) []fillbook.Execution {
	t.Helper()
	execs, err := fillbook.ImportExecutions(newSampleCSV())
	if err != nil {
		t.Fatalf("sample executions: %v", err)
	}
	return execs
}

func TestStageAndListExecutions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	staged := testExecutions(t)
	if err := s.StageExecutions(ctx, staged); err != nil {
		t.Fatalf("StageExecutions() error = %v", err)
	}

	got, err := s.Executions(ctx)
	if err != nil {
		t.Fatalf("Executions() error = %v", err)
	}
	if len(got) != len(staged) {
		t.Fatalf("got %d executions, want %d", len(got), len(staged))
	}
	for i := range staged {
		if got[i].ID != staged[i].ID || got[i].Side != staged[i].Side ||
			!got[i].Price.Equal(staged[i].Price) || !got[i].Time.Equal(staged[i].Time) {
			t.Errorf("execution %d round-trip mismatch: %+v != %+v", i, got[i], staged[i])
		}
	}
}

func TestReplacePositionsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	execs := testExecutions(t)
	key := fillbook.PartitionKey{Account: "ACC-001", Instrument: "NQ"}
	table, err := fillbook.NewMultiplierTable(map[string]string{"NQ": "20"})
	if err != nil {
		t.Fatalf("NewMultiplierTable() error = %v", err)
	}
	result := fillbook.BuildPartition(key, execs, table)
	if result.Err != nil {
		t.Fatalf("BuildPartition() error = %v", result.Err)
	}

	if err := s.ReplacePositions(ctx, "run-1", result); err != nil {
		t.Fatalf("ReplacePositions() error = %v", err)
	}

	positions, err := s.Positions(ctx, "ACC-001", "NQ")
	if err != nil {
		t.Fatalf("Positions() error = %v", err)
	}
	if len(positions) != len(result.Positions) {
		t.Fatalf("got %d positions, want %d", len(positions), len(result.Positions))
	}
	got, want := positions[0], result.Positions[0]
	if got.Status != want.Status || got.Direction != want.Direction {
		t.Errorf("round-trip %s %s != %s %s", got.Status, got.Direction, want.Status, want.Direction)
	}
	if !got.PointsPnL.Equal(want.PointsPnL) {
		t.Errorf("PointsPnL = %s, want %s", got.PointsPnL, want.PointsPnL)
	}
	if (got.DollarsPnL == nil) != (want.DollarsPnL == nil) {
		t.Errorf("DollarsPnL nullability mismatch")
	}
	if len(got.ExecutionRefs) != len(want.ExecutionRefs) {
		t.Errorf("ExecutionRefs = %v, want %v", got.ExecutionRefs, want.ExecutionRefs)
	}

	// A second rebuild replaces, not appends.
	if err := s.ReplacePositions(ctx, "run-2", result); err != nil {
		t.Fatalf("ReplacePositions() second run error = %v", err)
	}
	positions, err = s.Positions(ctx, "", "")
	if err != nil {
		t.Fatalf("Positions() error = %v", err)
	}
	if len(positions) != len(result.Positions) {
		t.Errorf("after second rebuild got %d positions, want %d", len(positions), len(result.Positions))
	}
}

func TestReplacePositions_RefusesFailedPartition(t *testing.T) {
	s := openTestStore(t)

	result := fillbook.PartitionResult{
		Key: fillbook.PartitionKey{Account: "ACC-001", Instrument: "NQ"},
		Err: context.DeadlineExceeded,
	}
	if err := s.ReplacePositions(context.Background(), "run-1", result); err == nil {
		t.Fatal("ReplacePositions() persisted a failed partition")
	}
}
