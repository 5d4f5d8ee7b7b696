// Package render turns family forests into pictures.
//
// The [nodelink] subpackage writes Graphviz DOT with one rank per generation
// and renders it to SVG in-process. [ToPDF] and [ToPNG] convert that SVG
// with the external rsvg-convert tool:
//
//	dot := nodelink.ToDOT(f, gens, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
