package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/scopedfs/fs/marker"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report the platform, the marker defect and the selected strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := a.negotiator.Classifier().Root()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "platform:   %s\n", a.negotiator.Scheme().Platform)
			fmt.Fprintf(out, "mode:       %s\n", a.selector.Mode())
			fmt.Fprintf(out, "defect:     %t\n", marker.Probe(a.selector.Backend(), root))
			fmt.Fprintf(out, "strategy:   %s\n", a.selector.Kind())
			fmt.Fprintf(out, "permission: %t\n", a.selector.HasStoragePermission())
			return nil
		},
	}
}
