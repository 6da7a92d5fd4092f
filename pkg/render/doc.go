// Package render turns layouts into pictures.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [dot]: a Graphviz tree of containers and windows, rendered to SVG
//     in-process
//   - [term]: the screen itself, rasterised onto a character grid for
//     terminals
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(state, dot.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [dot]: github.com/matzehuels/stacktile/pkg/render/dot
// [term]: github.com/matzehuels/stacktile/pkg/render/term
package render
