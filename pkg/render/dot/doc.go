// Package dot renders a layout tree as a Graphviz diagram.
//
// # Overview
//
// Containers become plain boxes labelled with their split axis and
// geometry; windows become filled, rounded boxes in their client's colour.
// Edges run from each container to its children in order. The focused
// item is drawn with a heavy outline and a pending cursor is marked in red:
// a split cursor outlines its item, an into cursor is drawn as a small
// point node hanging off its container.
//
// # Usage
//
//	src := dot.ToDOT(mgr.Snapshot(), dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// PDF and PNG output go through [render.ToPDF] and [render.ToPNG] and need
// rsvg-convert on the PATH.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
//
// [render.ToPDF]: github.com/matzehuels/stacktile/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/stacktile/pkg/render.ToPNG
package dot
