package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/cache"
	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/render/dot"
	"github.com/matzehuels/stacktile/pkg/render/term"
	"github.com/matzehuels/stacktile/pkg/wm"
)

// Output formats accepted by render -f.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatText = "text"
)

var renderFormats = []string{formatJSON, formatDOT, formatSVG, formatPDF, formatPNG, formatText}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format   string  // output format
	output   string  // output file; stdout when empty
	detailed bool    // geometry and weights in DOT labels
	width    int     // text grid width in cells
	height   int     // text grid height in cells
	scale    float64 // PNG scale factor
	noCache  bool    // skip the diagram cache
}

// renderCommand creates the render command for drawing a saved snapshot.
//
// The argument is a path to a state document written by "run --json" or
// the ID or name of a record in the configured store.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		format: formatText,
		width:  80,
		height: 24,
		scale:  2,
	}

	cmd := &cobra.Command{
		Use:   "render <snapshot.json|id>",
		Short: "Render a layout snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(renderFormats, opts.format) {
				return serrors.New(serrors.ErrCodeInvalidFormat, "unknown format %q (use json, dot, svg, pdf, png or text)", opts.format)
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, dot, svg, pdf, png, text")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include geometry and weights (dot, svg, pdf, png)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "grid width in cells (text)")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "grid height in cells (text)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "scale factor (png)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the diagram cache")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(renderFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, out io.Writer, ref string, opts *renderOpts) error {
	data, err := c.loadState(ctx, ref)
	if err != nil {
		return err
	}
	state, err := wm.UnmarshalState(data)
	if err != nil {
		return err
	}
	m, err := wm.Restore(state, wm.WithLogger(c.Logger))
	if err != nil {
		return err
	}

	dc := c.newCache(opts.noCache)
	defer dc.Close()

	result, err := c.renderState(ctx, dc, m, opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = out.Write(result)
		return err
	}
	if err := os.WriteFile(opts.output, result, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(out, "Rendered %s", opts.format)
	printFile(out, opts.output)
	return nil
}

// loadState reads ref as a file, falling back to the configured store.
func (c *CLI) loadState(ctx context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rec, err := st.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded snapshot", "id", rec.ID, "name", rec.Name)
	return rec.Data, nil
}

// renderState encodes m in opts.format. Graphviz output is cached by DOT
// source.
func (c *CLI) renderState(ctx context.Context, dc cache.Cache, m *wm.Manager, opts *renderOpts) ([]byte, error) {
	switch opts.format {
	case formatJSON:
		data, err := m.MarshalState()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatText:
		return []byte(term.Render(m, term.Options{Width: opts.width, Height: opts.height}) + "\n"), nil
	}

	src := dot.ToDOT(m.Snapshot(), dot.Options{Detailed: opts.detailed})
	if opts.format == formatDOT {
		return []byte(src), nil
	}

	key := cache.Key(opts.format, src, opts.scale)
	data, hit, err := cache.GetOrCompute(ctx, dc, key, func() ([]byte, error) {
		switch opts.format {
		case formatPDF:
			return dot.RenderPDF(ctx, src)
		case formatPNG:
			return dot.RenderPNG(ctx, src, opts.scale)
		}
		return dot.RenderSVG(ctx, src)
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("rendered diagram", "format", opts.format, "cached", hit)
	return data, nil
}
