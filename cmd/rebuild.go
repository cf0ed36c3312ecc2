package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradelytics/fillbook"
)

// rebuildCmd holds the flags for the 'rebuild' subcommand.
type rebuildCmd struct {
	account    string
	instrument string
}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "rebuild positions from staged executions" }
func (*rebuildCmd) Usage() string {
	return `fillbook rebuild [-account <account>] [-instrument <instrument>]

  Deduplicates and replays staged executions into positions, one
  (account, instrument) partition at a time, concurrently across
  partitions. A partition with malformed data fails on its own and leaves
  its previously stored positions untouched; the other partitions still
  rebuild.
`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Only rebuild partitions of this account")
	f.StringVar(&c.instrument, "instrument", "", "Only rebuild partitions of this instrument")
}

func (c *rebuildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer app.close()

	execs, err := app.store.Executions(ctx)
	if err != nil {
		return fail(err)
	}

	batches := fillbook.Partition(execs)
	for key := range batches {
		if (c.account != "" && key.Account != c.account) ||
			(c.instrument != "" && key.Instrument != c.instrument) {
			delete(batches, key)
		}
	}
	if len(batches) == 0 {
		fmt.Println("Nothing to rebuild.")
		return subcommands.ExitSuccess
	}

	table, err := app.cfg.MultiplierTable()
	if err != nil {
		return fail(err)
	}

	runID := uuid.NewString()
	results := fillbook.BuildAll(ctx, batches, table, app.cfg.Rebuild.Concurrency)

	status := subcommands.ExitSuccess
	for _, result := range results {
		if result.Err != nil {
			app.logger.Error("partition rebuild failed",
				zap.String("account", result.Key.Account),
				zap.String("instrument", result.Key.Instrument),
				zap.Error(result.Err))
			status = subcommands.ExitFailure
			continue
		}
		for _, p := range result.Positions {
			if p.DollarsPnL == nil {
				app.logger.Warn("dollar P&L unavailable",
					zap.String("account", p.Account),
					zap.String("instrument", p.Instrument),
					zap.Error(fillbook.ErrUnmappedInstrument))
			}
		}
		for _, anomaly := range result.Dedup.Anomalies {
			app.logger.Warn("dropped ambiguous duplicate",
				zap.String("account", result.Key.Account),
				zap.String("instrument", result.Key.Instrument),
				zap.String("reason", anomaly.Reason))
		}
		if err := app.store.ReplacePositions(ctx, runID, result); err != nil {
			app.logger.Error("persisting rebuilt partition failed", zap.Error(err))
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: %d positions (%d duplicates removed, %d anomalies)\n",
			result.Key, len(result.Positions), result.Dedup.Removed, len(result.Dedup.Anomalies))
	}

	fmt.Printf("Rebuild run %s finished.\n", runID)
	return status
}
