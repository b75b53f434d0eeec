package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/scopedfs/errors"
)

func newCatCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "Print a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				data, err := a.selector.ReadBytes(args[0])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			text, err := a.selector.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "bytes", false, "print the raw bytes")
	return cmd
}

func newWriteCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "write PATH [TEXT]",
		Short: "Write a file from TEXT or standard input",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if raw {
				if len(args) == 2 {
					return errors.New(errors.CodeInvalidInput, "--bytes reads from standard input only")
				}
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, errors.CodeIO, "failed to read standard input")
				}
				return a.selector.WriteBytes(path, data)
			}

			if len(args) == 2 {
				return a.selector.WriteFile(path, args[1])
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Wrap(err, errors.CodeIO, "failed to read standard input")
			}
			return a.selector.WriteFile(path, string(data))
		},
	}
	cmd.Flags().BoolVar(&raw, "bytes", false, "write standard input unchanged")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PATH",
		Short: "Delete a file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.selector.Delete(args[0])
		},
	}
}

func newExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists PATH",
		Short: "Print whether a path exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.selector.Exists(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func newCpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cp SRC DST",
		Short: "Copy a file or directory tree, replacing DST",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.selector.Copy(args[0], args[1])
		},
	}
}

func newMvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv SRC DST",
		Short: "Move a file or directory tree, replacing DST",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.selector.Move(args[0], args[1])
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var dirs, files bool
	cmd := &cobra.Command{
		Use:   "ls DIR",
		Short: "List the children of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				paths []string
				err   error
			)
			switch {
			case dirs:
				paths, err = a.selector.ListFiltered(args[0], true)
			case files:
				paths, err = a.selector.ListFiltered(args[0], false)
			default:
				paths, err = a.selector.List(args[0])
			}
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dirs, "dirs", false, "list directories only")
	cmd.Flags().BoolVar(&files, "files", false, "list files only")
	cmd.MarkFlagsMutuallyExclusive("dirs", "files")
	return cmd
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a directory and its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.selector.CreateDirectory(args[0])
		},
	}
}
