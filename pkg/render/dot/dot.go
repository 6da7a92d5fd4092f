package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/render"
	"github.com/matzehuels/stacktile/pkg/wm"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds geometry, payload serials and child weights to labels.
	Detailed bool
}

func nodeID(item layout.ItemIdx) string {
	if item.IsContainer() {
		return "c" + strconv.Itoa(item.Index)
	}
	return "w" + strconv.Itoa(item.Index)
}

// ToDOT converts a manager state to Graphviz DOT source. Only items
// reachable from the root are drawn.
func ToDOT(s wm.State, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph layout {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	var edges []string
	var visit func(item layout.ItemIdx)
	visit = func(item layout.ItemIdx) {
		attrs := itemAttrs(s, item, opts)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(item), strings.Join(attrs, ", "))
		if !item.IsContainer() {
			return
		}
		c := s.Layout.Containers[item.Index]
		for _, ch := range c.Children {
			edge := fmt.Sprintf("  %s -> %s", nodeID(item), nodeID(ch.Item))
			if opts.Detailed {
				edge += fmt.Sprintf(" [label=%q]", strconv.FormatFloat(ch.Weight, 'g', 4, 64))
			}
			edges = append(edges, edge+";")
			visit(ch.Item)
		}
	}
	if len(s.Layout.Containers) > 0 && s.Layout.Containers[0] != nil {
		visit(layout.Root)
	}

	if cur := s.Cursor; cur != nil && cur.Kind == layout.CursorInto {
		fmt.Fprintf(&buf, "  cursor [shape=point, width=0.15, color=red, xlabel=%q];\n", fmt.Sprintf("into %d", cur.Index))
		edges = append(edges, fmt.Sprintf("  %s -> cursor [color=red, style=dashed];", nodeID(layout.ContainerItem(cur.Container))))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.String()
}

func itemAttrs(s wm.State, item layout.ItemIdx, opts Options) []string {
	var label string
	var attrs []string
	if item.IsContainer() {
		c := s.Layout.Containers[item.Index]
		label = fmt.Sprintf("%s\n%s", item, c.Strategy)
		if opts.Detailed {
			label += fmt.Sprintf("\n%s\nframe #%d", c.Bounds, c.Data.Serial)
		}
		attrs = append(attrs, "style=\"filled\"", "fillcolor=\"#eeeeee\"")
	} else {
		w := s.Layout.Windows[item.Index]
		title, color := "(empty)", "white"
		if w.Data != nil && !w.Data.Empty {
			title, color = w.Data.Title, w.Data.Color
		}
		label = title
		if opts.Detailed {
			label += fmt.Sprintf("\n%s\n%s", item, w.Bounds)
		}
		style := "rounded,filled"
		if w.Data == nil || w.Data.Empty {
			style += ",dashed"
		}
		attrs = append(attrs, fmt.Sprintf("style=%q", style), fmt.Sprintf("fillcolor=%q", color))
	}
	attrs = append([]string{fmt.Sprintf("label=%q", label)}, attrs...)

	if item == s.Point {
		attrs = append(attrs, "penwidth=3")
	}
	if cur := s.Cursor; cur != nil && cur.Kind == layout.CursorSplit && cur.Item == item {
		attrs = append(attrs, "color=red", fmt.Sprintf("xlabel=%q", "split "+cur.Direction.String()))
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders DOT source as PDF via SVG. Requires rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG at the given scale. Requires
// rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
