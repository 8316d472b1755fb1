// Package sink renders draw instructions to output formats.
//
// # Overview
//
// A "sink" turns the [render.Instruction] lists of one or more slides
// ([Page] values) into bytes:
//
//   - JSON: the instruction lists as-is, for presentation exporters
//   - SVG: a vector preview, slides stacked top to bottom
//   - PNG: a raster preview drawn with gg and the embedded Go fonts
//   - PDF: the SVG preview converted with rsvg-convert
//
// Every sink takes functional options:
//
//	svg, err := sink.RenderSVG(ctx, pages,
//	    sink.WithSource(effect.FileSource{Root: deckDir}),
//	    sink.WithGap(24),
//	)
//
// Vector instructions (glass and gradient frames) are embedded in the SVG
// preview as nested documents. The PNG sink paints them directly, since it
// knows the shape of the documents package effect writes.
//
// [render.Instruction]: github.com/matzehuels/slideweave/pkg/render.Instruction
package sink
