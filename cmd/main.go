// Package cmd implements the fillbook command line verbs.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/tradelytics/fillbook/config"
	"github.com/tradelytics/fillbook/logging"
	"github.com/tradelytics/fillbook/store"
)

// Commands lists every subcommand the binary registers.
var Commands = []subcommands.Command{
	&importCmd{},
	&rebuildCmd{},
	&positionsCmd{},
	&reportCmd{},
}

var configPath = flag.String("config", "", "Path to the configuration file (defaults to fillbook.yaml)")

// appContext bundles what every subcommand needs: configuration, logger and
// the open store.
type appContext struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// openApp loads configuration and opens the store. Callers must call close.
func openApp() (*appContext, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Database, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &appContext{cfg: cfg, logger: logger, store: s}, nil
}

func (a *appContext) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// fail prints an error for the user and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
