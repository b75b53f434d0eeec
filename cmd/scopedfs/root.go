package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scopedfs",
		Short:         "File operations across restricted and unrestricted device storage",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/scopedfs/config.yaml)")
	flags.BoolVar(&a.jsonErrors, "json", false, "print errors as JSON")
	flags.StringVar(&a.mode, "mode", "", "access mode: native or privileged")
	flags.IntVar(&a.sdk, "sdk", 0, "platform API level")
	flags.StringVar(&a.root, "root", "", "external storage root")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.interp, "interpreter", false, "run privileged commands in the in-process shell")

	cmd.AddCommand(
		newCatCmd(a),
		newWriteCmd(a),
		newRmCmd(a),
		newExistsCmd(a),
		newCpCmd(a),
		newMvCmd(a),
		newLsCmd(a),
		newMkdirCmd(a),
		newGrantsCmd(a),
		newProbeCmd(a),
	)
	return cmd
}
