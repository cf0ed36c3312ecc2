package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/tradelytics/fillbook"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "stage executions from a broker CSV export" }
func (*importCmd) Usage() string {
	return `fillbook import -file <export.csv>

  Parses a broker CSV export and stages its executions verbatim. Staged rows
  are deduplicated and validated later, by 'rebuild', so repeating an import
  is safe.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Broker CSV export to import")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		return subcommands.ExitUsageError
	}

	app, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer app.close()

	r, err := os.Open(c.file)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	execs, err := fillbook.ImportExecutions(r)
	if err != nil {
		return fail(fmt.Errorf("import of %q failed: %w", c.file, err))
	}
	if err := app.store.StageExecutions(ctx, execs); err != nil {
		return fail(err)
	}

	app.logger.Info("import complete", zap.String("file", c.file), zap.Int("executions", len(execs)))
	fmt.Printf("Staged %d executions from %s\n", len(execs), c.file)
	return subcommands.ExitSuccess
}
