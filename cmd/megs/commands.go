package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/errors"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Compile a module and verify it against the contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close(ctx)) }()

			return check(ctx, cmd.OutOrStdout(), a, args[0])
		},
	}
}

func check(ctx context.Context, w io.Writer, a *app, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(path, err)
	}
	mod, err := a.engine.Compile(ctx, data)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	fmt.Fprintln(w, headerStyle.Render(path))
	for _, s := range mod.Exports() {
		fmt.Fprintf(w, "  export %s\n", moduleStyle.Render(s.String()))
	}
	for _, s := range mod.Imports() {
		fmt.Fprintf(w, "  import %s\n", externStyle.Render(s.String()))
	}

	// The diagnostic is printed once, by main.
	if err := a.env.Contract().Check(mod); err != nil {
		return err
	}
	fmt.Fprintln(w, okStyle.Render("ok"))
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Load the module root and print the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close(ctx)) }()

			// Per-module failures are logged by LoadDir; list what did load.
			if n, err := a.load(ctx); err != nil && n == 0 {
				return err
			}
			printCatalog(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

func printCatalog(w io.Writer, a *app) {
	for _, cat := range a.env.Categories() {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(cat.Name), hintStyle.Render(fmt.Sprintf("#%d", cat.ID)))
		for _, info := range cat.Modules {
			fmt.Fprintf(w, "  %s %s\n", moduleStyle.Render(info.Name),
				hintStyle.Render(fmt.Sprintf("#%d in %s out %s", info.ID, info.Inputs, info.Outputs)))
		}
	}
}

type runOptions struct {
	ticks int
	at    string
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Instantiate every module once and print the draw calls of each tick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ticks := opts.cfg.Run.Ticks
			if cmd.Flags().Changed("ticks") {
				ticks = ro.ticks
			}
			at, err := parsePoint(ro.at)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close(ctx)) }()

			return run(ctx, cmd.OutOrStdout(), a, ticks, at)
		},
	}
	cmd.Flags().IntVar(&ro.ticks, "ticks", 1, "number of ticks (overrides run.ticks)")
	cmd.Flags().StringVar(&ro.at, "at", "0,0", "position of the first instance as x,y[,z]")
	return cmd
}

// run places the instances in a row starting at origin, each one offset by
// the width of the previous instance.
func run(ctx context.Context, w io.Writer, a *app, ticks int, origin megs.Point) error {
	n, err := a.load(ctx)
	if err != nil && n == 0 {
		return err
	}

	pos := origin
	for _, cat := range a.env.Categories() {
		for _, info := range cat.Modules {
			id, err := a.env.Instantiate(ctx, cat.Name, info.Name, pos)
			if err != nil {
				return err
			}
			width, _, err := a.env.InstanceSize(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s/%s at %s\n", hintStyle.Render(id.String()), cat.Name, info.Name, pos)
			pos.X += width
		}
	}

	var tickErr error
	for tick := range ticks {
		a.recorder.Reset()
		tickErr = multierr.Append(tickErr, a.env.OnTick(ctx))
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("tick %d", tick)))
		for _, call := range a.recorder.Calls() {
			fmt.Fprintf(w, "  %s\n", drawStyle.Render(call.String()))
		}
	}
	return tickErr
}
