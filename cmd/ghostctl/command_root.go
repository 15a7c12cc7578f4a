package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/ghost/internal/config"
	"github.com/mattjoyce/ghost/internal/history"
	"github.com/mattjoyce/ghost/internal/log"
	"github.com/mattjoyce/ghost/internal/storage"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ghostctl",
		Short:         "Ghost agent admin CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")

	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newRunsCmd(opts))
	root.AddCommand(newDoctorCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	return cfg, nil
}

// openStore opens the history database named by the config. The caller
// closes the returned DB.
func (o *rootOptions) openStore(ctx context.Context) (*history.Store, *sql.DB, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.State.Path == "" {
		return nil, nil, fmt.Errorf("history is disabled (state.path is empty)")
	}
	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		return nil, nil, err
	}
	return history.New(db), db, nil
}
