// Package treeviz renders solved slide trees as Graphviz diagrams.
//
// # Overview
//
// Each element of a slide becomes a box, connected to its parent by an
// arrow. The diagram is a debugging aid for deck authors: it shows how the
// document nests and, in detailed mode, the box every element was given.
//
// # Usage
//
// Solve a slide, convert the geometry to DOT, then render to SVG:
//
//	dot := treeviz.ToDOT(geometry, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use [RenderPDF] and [RenderPNG], which convert the
// SVG with rsvg-convert.
//
// # Styling
//
// Kinds are told apart by fill color. Placeholders, which stand in for
// elements with an invalid shape, are drawn dashed and grey.
package treeviz
