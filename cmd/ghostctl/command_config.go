package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattjoyce/ghost/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration integrity",
	}
	cmd.AddCommand(newConfigLockCmd(opts))
	return cmd
}

func newConfigLockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Authorize the current config by writing its BLAKE3 checksum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Discover(opts.configPath)
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("no config file found to lock")
			}

			hash, err := config.WriteChecksum(path)
			if err != nil {
				return err
			}
			// Never leave a sidecar authorizing a config that does not load.
			if _, err := config.Load(path); err != nil {
				_ = os.Remove(config.ChecksumPath(path))
				return fmt.Errorf("refusing to lock: %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "Locked %s\n", path)
			fmt.Fprintf(out, "  BLAKE3 %s\n", hash)
			fmt.Fprintf(out, "  Sidecar %s\n", config.ChecksumPath(path))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ghostctl version %s\n", version)
		},
	}
}
