package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// Options configures tree diagram rendering.
type Options struct {
	// Detailed adds the computed box and the text content to node labels.
	// When false, only the kind and id are shown.
	Detailed bool
}

// kindFill colors leaf and frame kinds. Containers keep the default white.
var kindFill = map[slide.Kind]string{
	slide.KindText:      "\"#fef3c7\"",
	slide.KindHeading:   "\"#fde68a\"",
	slide.KindFrame:     "\"#dbeafe\"",
	slide.KindImage:     "\"#dcfce7\"",
}

// ToDOT converts a solved slide to Graphviz DOT. Nodes are keyed by element
// path, so the output is stable for the same tree.
func ToDOT(root *layout.GeometryNode, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	var edges []string
	root.Walk(func(n *layout.GeometryNode, _ int) bool {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Path, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", n.Path, c.Path))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *layout.GeometryNode, detailed bool) string {
	label := n.Kind.String()
	if n.ID != "" {
		label += "#" + n.ID
	}
	if !detailed {
		return label
	}
	parts := []string{label, fmt.Sprintf("%g,%g %gx%g", n.Left, n.Top, n.Width, n.Height)}
	if n.Element != nil && n.Element.Content != "" {
		parts = append(parts, truncate(n.Element.Content, 32))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *layout.GeometryNode, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Placeholder {
		return append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	if fill, ok := kindFill[n.Kind]; ok {
		attrs = append(attrs, "fillcolor="+fill)
	}
	return attrs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz root element so the diagram scales
// from the origin.
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
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
// Requires librsvg.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
