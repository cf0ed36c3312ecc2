package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/tradelytics/fillbook"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	account    string
	instrument string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "export stored positions as JSONL" }
func (*positionsCmd) Usage() string {
	return `fillbook positions [-account <account>] [-instrument <instrument>]

  Writes stored positions to stdout, one JSON object per line, with exact
  decimal values. For a human-readable view use 'report'.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Only list positions of this account")
	f.StringVar(&c.instrument, "instrument", "", "Only list positions of this instrument")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer app.close()

	positions, err := app.store.Positions(ctx, c.account, c.instrument)
	if err != nil {
		return fail(err)
	}
	if err := fillbook.ExportPositions(os.Stdout, positions); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
