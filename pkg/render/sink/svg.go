package sink

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/beevik/etree"

	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/fonts"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/style"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	source effect.ImageSource
	gap    float64

	defs *etree.Element
	ids  int
}

// WithSource inlines raster images as data URIs, loading them from src.
// Without it images keep their original reference.
func WithSource(src effect.ImageSource) SVGOption { return func(r *svgRenderer) { r.source = src } }

// WithGap sets the space between stacked slides in px.
func WithGap(px float64) SVGOption { return func(r *svgRenderer) { r.gap = max(0, px) } }

// RenderSVG paints pages into one SVG, stacked top to bottom. ctx bounds image
// loading.
func RenderSVG(ctx context.Context, pages []Page, opts ...SVGOption) ([]byte, error) {
	r := &svgRenderer{gap: DefaultGap}
	for _, opt := range opts {
		opt(r)
	}

	w, h, tops := stack(pages, r.gap)
	doc := etree.NewDocument()
	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", effect.Num(w), effect.Num(h)))
	svg.CreateAttr("width", effect.Num(w))
	svg.CreateAttr("height", effect.Num(h))
	r.defs = svg.CreateElement("defs")

	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := svg.CreateElement("g")
		g.CreateAttr("class", "slide")
		g.CreateAttr("id", fmt.Sprintf("slide-%d", p.Index))
		if tops[i] != 0 {
			g.CreateAttr("transform", "translate(0 "+effect.Num(tops[i])+")")
		}
		page := g.CreateElement("rect")
		page.CreateAttr("width", effect.Num(p.Width))
		page.CreateAttr("height", effect.Num(p.Height))
		page.CreateAttr("fill", "#ffffff")

		for _, in := range p.Instructions {
			r.instruction(ctx, g, in)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (r *svgRenderer) nextID(prefix string) string {
	r.ids++
	return fmt.Sprintf("%s%d", prefix, r.ids)
}

func (r *svgRenderer) instruction(ctx context.Context, g *etree.Element, in render.Instruction) {
	switch in.Type {
	case render.TypeShape:
		r.shape(g, in)
	case render.TypeText:
		r.text(g, in)
	case render.TypeImage:
		r.image(ctx, g, in)
	case render.TypeVector:
		r.vector(g, in)
	}
}

func rect(parent *etree.Element, b render.PxBox, radius float64) *etree.Element {
	e := parent.CreateElement("rect")
	e.CreateAttr("x", effect.Num(b.Left))
	e.CreateAttr("y", effect.Num(b.Top))
	e.CreateAttr("width", effect.Num(b.Width))
	e.CreateAttr("height", effect.Num(b.Height))
	if radius > 0 {
		e.CreateAttr("rx", effect.Num(radius))
	}
	return e
}

func (r *svgRenderer) shape(g *etree.Element, in render.Instruction) {
	sh := in.Shape
	e := rect(g, in.Px, sh.Radius)
	switch {
	case sh.Gradient != nil && len(sh.Gradient.Stops) > 0:
		e.CreateAttr("fill", "url(#"+r.gradient(sh.Gradient)+")")
	case sh.Fill.IsVisible():
		e.CreateAttr("fill", sh.Fill.Hex())
		if a := sh.Fill.Alpha(); a < 1 {
			e.CreateAttr("fill-opacity", effect.Num(a))
		}
	default:
		e.CreateAttr("fill", "none")
	}
	if sh.Opacity < 1 {
		e.CreateAttr("opacity", effect.Num(sh.Opacity))
	}
	if b := sh.Border; b != nil && b.Width > 0 {
		e.CreateAttr("stroke", b.Color.Hex())
		e.CreateAttr("stroke-width", effect.Num(b.Width))
		if len(b.Dash) > 0 {
			e.CreateAttr("stroke-dasharray", effect.NumList(b.Dash))
		}
	}
	if sh.Shadow != nil {
		e.CreateAttr("filter", "url(#"+r.shadow(sh.Shadow)+")")
	}
}

func (r *svgRenderer) gradient(gr *style.Gradient) string {
	id := r.nextID("gradient-")
	var e *etree.Element
	if gr.Type == style.RadialGradient {
		e = r.defs.CreateElement("radialGradient")
		e.CreateAttr("id", id)
	} else {
		x1, y1, x2, y2 := gr.Vector()
		e = r.defs.CreateElement("linearGradient")
		e.CreateAttr("id", id)
		e.CreateAttr("x1", effect.Num(x1)+"%")
		e.CreateAttr("y1", effect.Num(y1)+"%")
		e.CreateAttr("x2", effect.Num(x2)+"%")
		e.CreateAttr("y2", effect.Num(y2)+"%")
	}
	for _, s := range gr.Stops {
		stop := e.CreateElement("stop")
		stop.CreateAttr("offset", effect.Num(s.Offset)+"%")
		stop.CreateAttr("stop-color", s.Color.Hex())
		if a := s.Color.Alpha(); a < 1 {
			stop.CreateAttr("stop-opacity", effect.Num(a))
		}
	}
	return id
}

// shadow defines a drop shadow filter. Offset and angle follow the
// presentation convention: angle in degrees clockwise from the x axis.
func (r *svgRenderer) shadow(s *style.Shadow) string {
	id := r.nextID("shadow-")
	rad := s.Angle * math.Pi / 180
	f := r.defs.CreateElement("filter")
	f.CreateAttr("id", id)
	f.CreateAttr("x", "-50%")
	f.CreateAttr("y", "-50%")
	f.CreateAttr("width", "200%")
	f.CreateAttr("height", "200%")
	d := f.CreateElement("feDropShadow")
	d.CreateAttr("dx", effect.Num(s.Offset*math.Cos(rad)))
	d.CreateAttr("dy", effect.Num(s.Offset*math.Sin(rad)))
	d.CreateAttr("stdDeviation", effect.Num(s.Blur/2))
	d.CreateAttr("flood-color", s.Color.Hex())
	d.CreateAttr("flood-opacity", effect.Num(s.Opacity))
	return id
}

func (r *svgRenderer) text(g *etree.Element, in render.Instruction) {
	t := in.Text
	if t.Fill.IsVisible() || t.Border != nil {
		r.shape(g, render.Instruction{Px: in.Px, Shape: &render.Shape{
			Fill: t.Fill, Opacity: 1, Radius: t.Radius, Border: t.Border, Shadow: t.BoxShadow,
		}})
	}
	ts := style.Text{Size: t.Size, Bold: t.Bold, Italic: t.Italic, LineHeight: t.LineHeight}
	width := max(0, in.Px.Width-t.Inset.Horizontal())
	lines := fonts.Lines(t.Content, ts, width)
	if len(lines) == 0 {
		return
	}
	lh := layout.LineHeight(ts)

	x, anchor := in.Px.Left+t.Inset.Left, "start"
	switch t.Align {
	case style.TextCenter:
		x, anchor = in.Px.Left+t.Inset.Left+width/2, "middle"
	case style.TextRight:
		x, anchor = in.Px.Left+in.Px.Width-t.Inset.Right, "end"
	}

	e := g.CreateElement("text")
	family := t.Family
	if family == "" {
		family = fonts.FontFamily
	}
	e.CreateAttr("font-family", family)
	e.CreateAttr("font-size", effect.Num(t.Size))
	if t.Bold {
		e.CreateAttr("font-weight", "bold")
	}
	if t.Italic {
		e.CreateAttr("font-style", "italic")
	}
	e.CreateAttr("fill", t.Color.Hex())
	if a := t.Color.Alpha(); a < 1 {
		e.CreateAttr("fill-opacity", effect.Num(a))
	}
	e.CreateAttr("text-anchor", anchor)
	if t.Shadow != nil {
		e.CreateAttr("filter", "url(#"+r.shadow(t.Shadow)+")")
	}

	top := in.Px.Top + t.Inset.Top
	for i, line := range lines {
		span := e.CreateElement("tspan")
		span.CreateAttr("x", effect.Num(x))
		span.CreateAttr("y", effect.Num(baseline(top, i, lh, t.Size)))
		span.SetText(line)
	}
}

// baseline returns the y of line i, with the glyphs centered in the line box.
func baseline(top float64, i int, lineHeight, size float64) float64 {
	return top + float64(i)*lineHeight + (lineHeight-size)/2 + size*0.8
}

func (r *svgRenderer) image(ctx context.Context, g *etree.Element, in render.Instruction) {
	im := in.Image
	e := g.CreateElement("image")
	e.CreateAttr("x", effect.Num(in.Px.Left))
	e.CreateAttr("y", effect.Num(in.Px.Top))
	e.CreateAttr("width", effect.Num(in.Px.Width))
	e.CreateAttr("height", effect.Num(in.Px.Height))
	e.CreateAttr("preserveAspectRatio", aspect(im.Fit))
	if im.Opacity < 1 {
		e.CreateAttr("opacity", effect.Num(im.Opacity))
	}
	href := im.Src
	if r.source != nil {
		if data, err := r.source.Load(ctx, im.Src); err == nil {
			if mime := mimeOf(data); mime != "" {
				href = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
			}
		}
	}
	e.CreateAttr("href", href)
}

func aspect(f style.Fit) string {
	switch f {
	case style.FitContain:
		return "xMidYMid meet"
	case style.FitNone:
		return "xMinYMin slice"
	default:
		return "xMidYMid slice"
	}
}

func (r *svgRenderer) vector(g *etree.Element, in render.Instruction) {
	v := in.Vector
	if v.SVG == "" {
		return
	}
	e := g.CreateElement("image")
	e.CreateAttr("x", effect.Num(in.Px.Left))
	e.CreateAttr("y", effect.Num(in.Px.Top))
	e.CreateAttr("width", effect.Num(in.Px.Width))
	e.CreateAttr("height", effect.Num(in.Px.Height))
	if v.Shadow != nil {
		e.CreateAttr("filter", "url(#"+r.shadow(v.Shadow)+")")
	}
	e.CreateAttr("href", "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(v.SVG)))
}
