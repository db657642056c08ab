package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/gekko3d/gettingback"
	"github.com/gekko3d/gettingback/shaders"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev1"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/spf13/cobra"
)

var errUnknownRevision = errors.New("unknown revision")

type revision struct {
	shaders.Contract
	layouts func(layout.Target) []layout.Struct
}

func lookupRevision(n int) (revision, error) {
	switch n {
	case 1:
		return revision{shaders.Revision1(), rev1.Layouts}, nil
	case 2:
		return revision{shaders.Revision2(), rev2.Layouts}, nil
	}
	return revision{}, fmt.Errorf("%w: %d", errUnknownRevision, n)
}

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:          "shadertool",
		Short:        "Inspect the shader contract revisions",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	logger := func(w io.Writer) gettingback.Logger { return gettingback.NewLogger("shadertool", w, debug) }

	root.AddCommand(newLayoutCmd(), newSlotsCmd(), newValidateCmd(logger))
	return root
}

func newLayoutCmd() *cobra.Command {
	var target string
	var rev int
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print field offsets of every shared record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := layout.ParseTarget(target)
			if err != nil {
				return err
			}
			r, err := lookupRevision(rev)
			if err != nil {
				return err
			}
			for _, s := range r.layouts(t) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "wgsl", "layout target: wgsl or metal")
	cmd.Flags().IntVarP(&rev, "rev", "r", 2, "contract revision")
	return cmd
}

func newSlotsCmd() *cobra.Command {
	var rev int
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the binding registry of a revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := lookupRevision(rev)
			if err != nil {
				return err
			}
			for _, b := range r.Registry.Bindings() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-17s %s\n", b.Name, b.Kind, b)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rev, "rev", "r", 2, "contract revision")
	return cmd
}

func newValidateCmd(logger func(io.Writer) gettingback.Logger) *cobra.Command {
	var rev int
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate [file.wgsl]",
		Short: "Check a shader's bindings and struct layouts against a revision",
		Long: "Check a shader's bindings and struct layouts against a revision. " +
			"Without a file the embedded shader of the revision is checked.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookupRevision(rev)
			if err != nil {
				return err
			}
			log := logger(cmd.ErrOrStderr())
			if len(args) == 0 {
				if watch {
					return errors.New("--watch needs a file")
				}
				return report(cmd.OutOrStdout(), "embedded", r.Contract, r.Builtin)
			}

			path := args[0]
			check := func(string) error {
				src, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				return report(cmd.OutOrStdout(), path, r.Contract, string(src))
			}
			err = check(path)
			if !watch {
				return err
			}
			if err != nil {
				log.Errorf("%v", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			log.Infof("watching %s", path)
			err = shaders.Watch(ctx, path, func(p string) {
				if err := check(p); err != nil {
					log.Errorf("%v", err)
				}
			}, func(err error) { log.Warnf("watch: %v", err) })
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&rev, "rev", "r", 2, "contract revision")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check whenever the file changes")
	return cmd
}

// report runs the same contract check the renderer runs before building a
// pipeline.
func report(out io.Writer, name string, c shaders.Contract, src string) error {
	rep, err := c.Check(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(out, "%s: ok, %d bindings matched\n", name, len(rep.Matched))
	for _, b := range rep.Unused {
		fmt.Fprintf(out, "  unused: %s\n", b)
	}
	return nil
}
