package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/tradelytics/fillbook/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	account    string
	instrument string
	raw        bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "render a positions report" }
func (*reportCmd) Usage() string {
	return `fillbook report [-account <account>] [-instrument <instrument>] [-raw]

  Renders the stored positions as a markdown report, grouped by account,
  with per-account realized P&L totals.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Only report positions of this account")
	f.StringVar(&c.instrument, "instrument", "", "Only report positions of this instrument")
	f.BoolVar(&c.raw, "raw", false, "Print raw markdown without terminal styling")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer app.close()

	positions, err := app.store.Positions(ctx, c.account, c.instrument)
	if err != nil {
		return fail(err)
	}

	md := renderer.PositionsMarkdown(positions)
	printMarkdown(md, c.raw)
	return subcommands.ExitSuccess
}
