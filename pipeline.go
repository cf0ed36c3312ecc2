package fillbook

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// PartitionKey identifies one independently processed execution stream.
type PartitionKey struct {
	Account    string
	Instrument string
}

func (k PartitionKey) String() string {
	return k.Account + "/" + k.Instrument
}

// PartitionResult is the outcome of rebuilding one partition. Err is set
// when the partition failed validation; the other partitions of the same
// run are unaffected.
type PartitionResult struct {
	Key       PartitionKey
	Positions []Position
	Dedup     DedupReport
	Err       error
}

// Partition groups a mixed batch of executions by (account, instrument).
// Relative input order is preserved inside each group.
func Partition(execs []Execution) map[PartitionKey][]Execution {
	groups := make(map[PartitionKey][]Execution)
	for _, e := range execs {
		key := PartitionKey{Account: e.Account, Instrument: e.Instrument}
		groups[key] = append(groups[key], e)
	}
	return groups
}

// BuildPartition runs the full pipeline for one (account, instrument)
// partition: deduplicate, sort chronologically, analyze the quantity flow
// and build positions. The sort is stable so that same-timestamp rows keep
// their import order.
func BuildPartition(key PartitionKey, execs []Execution, table MultiplierTable) PartitionResult {
	result := PartitionResult{Key: key}

	deduped, report := Deduplicate(execs)
	result.Dedup = report

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Time.Before(deduped[j].Time)
	})

	events, err := AnalyzeFlow(deduped)
	if err != nil {
		result.Err = fmt.Errorf("rebuild failed for %s: %w", key, err)
		return result
	}
	positions, err := BuildPositions(events, table)
	if err != nil {
		result.Err = fmt.Errorf("rebuild failed for %s: %w", key, err)
		return result
	}
	result.Positions = positions
	return result
}

// BuildAll rebuilds many partitions concurrently. Partitions share no
// mutable state (the multiplier table is read-only), so they fan out over a
// bounded worker group with no further coordination. Results come back in
// deterministic key order, each carrying its own error: one malformed
// partition never aborts the others.
func BuildAll(ctx context.Context, batches map[PartitionKey][]Execution, table MultiplierTable, concurrency int) []PartitionResult {
	keys := make([]PartitionKey, 0, len(batches))
	for key := range batches {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Account != keys[j].Account {
			return keys[i].Account < keys[j].Account
		}
		return keys[i].Instrument < keys[j].Instrument
	})

	if concurrency < 1 {
		concurrency = 1
	}
	var g errgroup.Group
	g.SetLimit(concurrency)

	results := make([]PartitionResult, len(keys))
	for i, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = PartitionResult{Key: key, Err: err}
				return nil
			}
			results[i] = BuildPartition(key, batches[key], table)
			return nil
		})
	}
	// Workers report per-partition failures through PartitionResult.Err.
	_ = g.Wait()
	return results
}
