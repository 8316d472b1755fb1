// Package layout computes absolute slide geometry from a styled element tree.
//
// The solver implements the subset of flexbox that slide decks use: a single
// line per container, grow and shrink, min/max clamping, justify-content and
// align-items/align-self, gaps, and the margin → border → padding → content
// box model.
//
// # Passes
//
// Elements are flattened into an arena in pre-order, so every parent index is
// smaller than the indices of its children. Three traversals run over it:
//
//	provisional  (pre-order)   percentages and viewport units with a known ancestor
//	intrinsic    (post-order)  content sizes: measured text, summed children
//	commit       (pre-order)   flex distribution, alignment and final boxes
//
// A node's box is final before any of its children are placed. Percentages
// that still have no definite containing size after the commit pass become 0
// and are reported as UNRESOLVED_PERCENTAGE diagnostics.
//
// # Text
//
// Text and heading leaves are sized by a [TextMeasurer]. [Heuristic] is the
// dependency-free default; pkg/fonts provides a measurer backed by real font
// metrics.
//
// # Output
//
// [Solve] returns a [GeometryNode] tree that mirrors the element tree one to
// one. Nodes reference their element read-only; the input tree is never
// modified.
package layout
