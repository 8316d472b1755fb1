// Package render maps a solved geometry tree to draw instructions.
//
// # Overview
//
// [Mapper.Map] walks a [layout.GeometryNode] tree in document order and emits
// one or more [Instruction] values per element. Instructions are the common
// currency of every output: the JSON sink writes them as-is, the SVG and PNG
// sinks paint them, and presentation exporters translate them to shapes.
//
// Every instruction carries its box twice: in inches at the mapper's DPI
// (96 by default) for presentation formats, and in the original slide px
// for raster and vector previews.
//
// # Kinds
//
//   - container: a shape, only when it paints a background, gradient or border
//   - frame: a shape, a gradient panel, or a synthesized glass vector
//   - text and heading: one text run
//   - image: one image with its fit mode
//
// Shadows, glows, reflections and border patterns pass through unchanged.
//
// # Glass
//
// Glass frames are synthesized by package effect. All glass frames of a slide
// run concurrently and are placed back by index, so output order never
// depends on scheduling.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg). The preview sinks use them.
//
// [layout.GeometryNode]: github.com/matzehuels/slideweave/pkg/layout.GeometryNode
package render
