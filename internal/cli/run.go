package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/matzehuels/stacktile/pkg/config"
	"github.com/matzehuels/stacktile/pkg/render/dot"
	"github.com/matzehuels/stacktile/pkg/render/term"
	"github.com/matzehuels/stacktile/pkg/scenario"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	json    bool   // print the final state as JSON instead of the summary
	dot     bool   // print the final state as Graphviz DOT
	save    string // snapshot name to save the final state under
	watch   bool   // replay again whenever the scenario file changes
	preview int    // preview width in cells; 0 disables, negative fits the terminal
}

// Preview widths used when --preview is left to fit the terminal.
const (
	defaultPreview = 60
	maxPreview     = 120
)

// runCommand creates the run command for replaying scenario files.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOpts{preview: -1}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Replay a scenario file",
		Long: `Replay a TOML, YAML or JSON scenario against a fresh layout.

By default a table of the replayed steps and a preview of the final layout
are printed. Use --json or --dot to print the final state instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.json && opts.dot {
				return errors.New("--json and --dot are mutually exclusive")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runScenario(cmd.Context(), cmd.OutOrStdout(), args[0], cfg, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the final state as JSON")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "print the final state as Graphviz DOT")
	cmd.Flags().StringVar(&opts.save, "save", "", "save the final state as a snapshot with this name")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "replay again when the scenario file changes")
	cmd.Flags().IntVar(&opts.preview, "preview", opts.preview, "preview width in cells (0 disables, default fits the terminal)")

	return cmd
}

func (c *CLI) runScenario(ctx context.Context, out io.Writer, path string, cfg config.Config, opts *runOpts) error {
	if !opts.watch {
		return c.replay(ctx, out, path, cfg, opts)
	}

	if err := c.replay(ctx, out, path, cfg, opts); err != nil {
		printError(out, "%v", err)
	}
	c.Logger.Info("watching for changes", "file", path)
	return config.WatchFile(ctx, path, func() {
		c.Logger.Info("scenario changed, replaying", "file", path)
		if err := c.replay(ctx, out, path, cfg, opts); err != nil {
			printError(out, "%v", err)
		}
	})
}

// replay parses and runs the scenario at path once and prints the result.
func (c *CLI) replay(ctx context.Context, out io.Writer, path string, cfg config.Config, opts *runOpts) error {
	sc, err := scenario.Parse(path)
	if err != nil {
		return err
	}
	if sc.Width == 0 {
		sc.Width = cfg.Width
	}
	if sc.Height == 0 {
		sc.Height = cfg.Height
	}

	res, err := scenario.NewRunner(c.Logger).Run(ctx, sc)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		data, err := res.Manager.MarshalState()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case opts.dot:
		fmt.Fprint(out, dot.ToDOT(res.Manager.Snapshot(), dot.Options{Detailed: true}))
	default:
		printSummary(out, res, previewWidth(out, opts.preview))
	}

	if opts.save != "" {
		return c.saveSnapshot(ctx, out, opts.save, res, cfg)
	}
	return nil
}

func (c *CLI) saveSnapshot(ctx context.Context, out io.Writer, name string, res *scenario.Result, cfg config.Config) error {
	prog := newProgress(c.Logger)
	data, err := res.Manager.MarshalState()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Save(ctx, name, data)
	if err != nil {
		return err
	}
	prog.done("Saved snapshot " + rec.Name)
	printSuccess(out, "Saved %s as %s", StyleValue.Render(rec.Name), StyleDim.Render(rec.ID))
	return nil
}

// previewWidth resolves --preview. A negative value fits the terminal out
// writes to, or defaultPreview when out is not a terminal.
func previewWidth(out io.Writer, preview int) int {
	if preview >= 0 {
		return preview
	}
	if f, ok := out.(*os.File); ok && xterm.IsTerminal(int(f.Fd())) {
		if w, _, err := xterm.GetSize(int(f.Fd())); err == nil && w > 8 {
			return min(w-2, maxPreview)
		}
	}
	return defaultPreview
}

// printSummary prints one table row per step and, when previewWidth is
// positive, the final layout.
func printSummary(w io.Writer, res *scenario.Result, previewWidth int) {
	rows := make([][]string, len(res.Steps))
	for i, sr := range res.Steps {
		rows[i] = []string{
			strconv.Itoa(sr.Index),
			sr.Step.String(),
			strconv.Itoa(sr.Actions),
			sr.Point,
		}
	}
	t := newTable([]string{"#", "Step", "Actions", "Point"}, rows, func(row int) bool {
		return !res.Steps[row].Changed
	})

	fmt.Fprintln(w, StyleTitle.Render(res.Name))
	fmt.Fprintln(w, t.Render())
	printInfo(w, "%s steps, %s actions in %s",
		StyleNumber.Render(strconv.Itoa(len(res.Steps))),
		StyleNumber.Render(strconv.Itoa(res.Actions)),
		res.Duration.Round(time.Microsecond))

	if previewWidth > 0 {
		fmt.Fprintln(w, term.Render(res.Manager, term.Options{
			Width:  previewWidth,
			Height: max(previewWidth/3, 4),
		}))
	}
}
