package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattjoyce/ghost/internal/doctor"
)

var errInvalidConfig = errors.New("configuration invalid")

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		baseDir string
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration against this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			result := doctor.New(cfg, doctor.Options{BaseDir: baseDir}).Validate()

			out := cmd.OutOrStdout()
			if asJSON {
				s, err := doctor.FormatJSON(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
			} else if result.Valid {
				color.New(color.FgGreen).Fprint(out, doctor.FormatHuman(result))
			} else {
				color.New(color.FgRed).Fprint(out, doctor.FormatHuman(result))
			}

			if !result.Valid {
				return errInvalidConfig
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&baseDir, "base-dir", "",
		"Directory relative launch paths resolve against (default: ghostctl's directory)")
	return cmd
}
