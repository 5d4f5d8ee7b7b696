// Package nodelink renders family forests as Graphviz node-link diagrams.
//
// People are boxes, parent links are arrows from parent to child, and
// spouses are joined by dashed undirected edges. Each generation is forced
// onto its own rank so the picture reads top to bottom from the oldest
// generation.
//
//	dot := nodelink.ToDOT(f, gens, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Options.Collapsed] hides everyone below a collapsed person, mirroring the
// fold state of a browser.
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]. PDF and PNG output go through
// rsvg-convert.
package nodelink
