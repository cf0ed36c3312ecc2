package fillbook

import "testing"

func TestDeduplicate_KeepsMaxQuantityPerID(t *testing.T) {
	// Four rows sharing one broker id, fragmented into equal-or-smaller
	// copies. Exactly one representative survives, with the max quantity.
	execs := []Execution{
		fill("E1", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
		fill("E1", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
		fill("E1", Buy, 2, 25000, "2025-03-03T09:30:00Z"),
		fill("E1", Buy, 2, 25000, "2025-03-03T09:30:00Z"),
	}

	out, report := Deduplicate(execs)

	if len(out) != 1 {
		t.Fatalf("Deduplicate() returned %d rows, want 1", len(out))
	}
	if out[0].Quantity != 2 {
		t.Errorf("representative quantity = %d, want 2", out[0].Quantity)
	}
	if report.Input != 4 || report.Output != 1 || report.Removed != 3 {
		t.Errorf("report = %+v, want Input=4 Output=1 Removed=3", report)
	}
	if len(report.Anomalies) != 0 {
		t.Errorf("unexpected anomalies: %v", report.Anomalies)
	}
}

func TestDeduplicate_FallbackKey(t *testing.T) {
	// No broker ids: rows collapse on (timestamp, side, price). The third
	// row differs in price and must stay separate.
	execs := []Execution{
		fill("", Buy, 3, 25000, "2025-03-03T09:30:00Z"),
		fill("", Buy, 3, 25000, "2025-03-03T09:30:00Z"),
		fill("", Buy, 3, 25010, "2025-03-03T09:30:00Z"),
	}

	out, report := Deduplicate(execs)

	if len(out) != 2 {
		t.Fatalf("Deduplicate() returned %d rows, want 2", len(out))
	}
	if report.Removed != 1 {
		t.Errorf("report.Removed = %d, want 1", report.Removed)
	}
}

func TestDeduplicate_PrimaryKeyBeatsFallback(t *testing.T) {
	// Same (timestamp, side, price) but distinct broker ids: two real fills,
	// nothing to collapse.
	execs := []Execution{
		fill("E1", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
		fill("E2", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
	}

	out, _ := Deduplicate(execs)
	if len(out) != 2 {
		t.Fatalf("Deduplicate() returned %d rows, want 2", len(out))
	}
}

func TestDeduplicate_AnomalyReported(t *testing.T) {
	keyless := Execution{Account: testAccount, Instrument: testInstrument, Side: Buy, Quantity: 1}
	execs := []Execution{
		fill("E1", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
		keyless,
	}

	out, report := Deduplicate(execs)

	if len(out) != 1 {
		t.Fatalf("Deduplicate() returned %d rows, want 1", len(out))
	}
	if len(report.Anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(report.Anomalies))
	}
	if report.Anomalies[0].Reason == "" {
		t.Error("anomaly reason must not be empty")
	}
	if report.Removed != 1 {
		t.Errorf("report.Removed = %d, want 1", report.Removed)
	}
}

func TestDeduplicate_PreservesOrder(t *testing.T) {
	execs := []Execution{
		fill("E3", Buy, 1, 25000, "2025-03-03T09:32:00Z"),
		fill("E1", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
		fill("E2", Sell, 1, 25010, "2025-03-03T09:31:00Z"),
		fill("E1", Buy, 1, 25000, "2025-03-03T09:30:00Z"),
	}

	out, _ := Deduplicate(execs)

	want := []string{"E3", "E1", "E2"}
	if len(out) != len(want) {
		t.Fatalf("Deduplicate() returned %d rows, want %d", len(out), len(want))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("out[%d].ID = %q, want %q", i, out[i].ID, id)
		}
	}
}
