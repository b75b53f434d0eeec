package main

import (
	"fmt"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/grant"
)

func newGrantsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Manage persisted tree grants",
	}
	cmd.AddCommand(newGrantsListCmd(a), newGrantsAddCmd(a), newGrantsRevokeCmd(a))
	return cmd
}

func newGrantsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted grants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grants, err := a.negotiator.Grants()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "URI\tDIR\tGRANTED")
			for _, g := range grants {
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.URI, g.Target().Dir(), g.GrantedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newGrantsAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add PATH|TREE_URI",
		Short: "Record a grant the user approved",
		Long: "Record a grant. The argument is either a restricted path, for which the\n" +
			"narrowest grant the platform accepts is recorded, or the tree URI the\n" +
			"user picked.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, uri, err := a.grantArg(args[0])
			if err != nil {
				return err
			}

			a.quiet = true
			ticket, err := a.negotiator.RequestFor(dir, nil)
			a.quiet = false
			if err != nil {
				return err
			}
			if err := a.negotiator.Complete(ticket, grant.Result{Granted: true, URI: uri}); err != nil {
				if errors.IsNotFound(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "already granted")
					return nil
				}
				return err
			}

			outcome, err := a.negotiator.Wait(cmd.Context(), ticket)
			if err != nil {
				return err
			}
			if outcome.Grant == nil {
				return errors.New(errors.CodeInternal, "grant was not recorded")
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Grant.URI)
			return nil
		},
	}
}

func newGrantsRevokeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke PATH|TREE_URI",
		Short: "Forget a persisted grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if isTreeURI(args[0]) {
				return a.negotiator.Revoke(args[0])
			}
			g, err := a.negotiator.Lookup(args[0])
			if err != nil {
				return err
			}
			return a.negotiator.Revoke(g.URI)
		},
	}
}

// grantArg turns a grants argument into the restricted path a request is
// made for, and the URI to record when a tree URI was given.
func (a *app) grantArg(arg string) (dir, uri string, err error) {
	if !isTreeURI(arg) {
		if !a.negotiator.Classifier().Restricted(arg) {
			return "", "", errors.WithContext(
				errors.New(errors.CodeInvalidInput, "path needs no grant"), "path", arg)
		}
		return arg, "", nil
	}

	target, err := grant.ParseTreeURI(arg)
	if err != nil {
		return "", "", err
	}
	return path.Join(a.negotiator.Classifier().Root(), target.Dir()), arg, nil
}

func isTreeURI(s string) bool {
	return strings.HasPrefix(s, "content://")
}
