// Package fillbook turns a raw stream of broker executions into auditable
// trading positions with realized profit and loss.
//
// The pipeline has four stages, each depending only on the previous one:
//   - Deduplication: collapsing duplicate execution rows introduced by
//     upstream export/import artifacts, reporting what was removed.
//   - Quantity flow analysis: folding a chronologically ordered execution
//     sequence into typed lifecycle events (start, modify, close, reversal)
//     driven by the running signed quantity.
//   - Position building: folding lifecycle events into Position aggregates.
//   - P&L calculation: FIFO matching of entry and exit executions inside a
//     position, in exact decimal arithmetic.
//
// The package is a pure, synchronous transformation: it performs no I/O,
// holds no global state, and is safe to run concurrently across
// (account, instrument) partitions. Persistence, CSV import and reporting
// live in the store, renderer and cmd packages built on top of it.
package fillbook
