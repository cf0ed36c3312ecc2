package fillbook

// Anomaly is a raw execution row that could not be assigned any
// deduplication key. Such rows are dropped and reported, never merged
// silently into another group.
type Anomaly struct {
	Execution Execution
	Reason    string
}

// DedupReport counts what the deduplicator did to one raw batch, for the
// observability layer.
type DedupReport struct {
	Input     int
	Output    int
	Removed   int
	Anomalies []Anomaly
}

// Deduplicate collapses duplicate rows in one raw (account, instrument)
// batch to a single representative per unique key.
//
// The key is the broker execution id when present, and the composite
// (timestamp, side, price) otherwise. When several rows share a key, the
// one with the largest quantity wins: upstream export artifacts fragment
// one real fill into equal-or-smaller copies, never larger ones. Rows with
// neither a usable id nor a viable fallback key are dropped and reported in
// the DedupReport. Input order is preserved.
func Deduplicate(execs []Execution) ([]Execution, DedupReport) {
	report := DedupReport{Input: len(execs)}

	type group struct {
		order int // index of the key's first occurrence
		best  Execution
	}
	groups := make(map[string]*group)
	var order []string

	for _, e := range execs {
		key, ok := dedupKey(e)
		if !ok {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Execution: e,
				Reason:    "no execution id and no usable (timestamp, side, price) key",
			})
			continue
		}
		g, seen := groups[key]
		if !seen {
			groups[key] = &group{order: len(order), best: e}
			order = append(order, key)
			continue
		}
		if e.Quantity > g.best.Quantity {
			g.best = e
		}
	}

	out := make([]Execution, 0, len(order))
	for _, key := range order {
		out = append(out, groups[key].best)
	}

	report.Output = len(out)
	report.Removed = report.Input - report.Output
	return out, report
}

// dedupKey returns the deduplication key for a row, or false when the row
// has neither a broker id nor the fields the fallback key needs.
func dedupKey(e Execution) (string, bool) {
	if e.ID != "" {
		return "id:" + e.ID, true
	}
	if e.Time.IsZero() || e.Side == "" || e.Price.IsZero() {
		return "", false
	}
	return "k:" + e.Ref(), true
}
