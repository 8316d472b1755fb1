package effect

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/slideweave/pkg/style"
)

const svgNS = "http://www.w3.org/2000/svg"

// document writes the effect SVG. Attribute order is fixed so the bytes are
// stable across runs.
func document(r Request, d Descriptor, raster []byte) ([]byte, error) {
	w, h := r.Frame.W, r.Frame.H

	doc := etree.NewDocument()
	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", svgNS)
	svg.CreateAttr("width", Num(w))
	svg.CreateAttr("height", Num(h))
	svg.CreateAttr("viewBox", "0 0 "+Num(w)+" "+Num(h))

	defs := svg.CreateElement("defs")
	clipID := r.ID + "-clip"
	clip := defs.CreateElement("clipPath")
	clip.CreateAttr("id", clipID)
	roundedRect(clip, 0, 0, w, h, r.Radius)

	if raster != nil {
		img := svg.CreateElement("image")
		img.CreateAttr("x", "0")
		img.CreateAttr("y", "0")
		img.CreateAttr("width", Num(w))
		img.CreateAttr("height", Num(h))
		img.CreateAttr("preserveAspectRatio", "none")
		img.CreateAttr("clip-path", "url(#"+clipID+")")
		img.CreateAttr("href", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(raster))
	}

	tint := roundedRect(svg, 0, 0, w, h, r.Radius)
	if len(d.Overlay) == 1 {
		tint.CreateAttr("fill", d.Overlay[0].Color.Hex())
		tint.CreateAttr("fill-opacity", Num(d.Opacity))
	} else {
		gradID := r.ID + "-overlay"
		gradient(defs, gradID, r.Overlay, d)
		tint.CreateAttr("fill", "url(#"+gradID+")")
	}

	if r.BorderWidth > 0 && r.BorderColor.IsVisible() {
		// Inset by half the stroke so the border stays inside the frame.
		in := r.BorderWidth / 2
		b := roundedRect(svg, in, in, max(0, w-r.BorderWidth), max(0, h-r.BorderWidth), max(0, r.Radius-in))
		b.CreateAttr("fill", "none")
		b.CreateAttr("stroke", r.BorderColor.Hex())
		if a := r.BorderColor.Alpha(); a < 1 {
			b.CreateAttr("stroke-opacity", Num(a))
		}
		b.CreateAttr("stroke-width", Num(r.BorderWidth))
		if dash := r.BorderStyle.DashArray(r.BorderWidth); dash != nil {
			b.CreateAttr("stroke-dasharray", NumList(dash))
		}
	}

	return doc.WriteToBytes()
}

// Panel writes a plain rounded-rect SVG filled with g and stroked with the
// request's border. Frames with a gradient background and no glass use it;
// the Background, BlurStrength and Tint fields of r are ignored.
func Panel(r Request, g *style.Gradient) ([]byte, error) {
	r.Background = ""
	r = r.normalized()
	d := Descriptor{Opacity: 1}
	if g != nil && len(g.Stops) > 0 {
		d.Overlay = g.Stops
		d.Radial = g.Type == style.RadialGradient
		d.Opacity = g.Stops[0].Color.Alpha()
	} else {
		d.Overlay = []style.Stop{{Color: "#ffffff"}}
		d.Opacity = 0
	}
	r.Overlay = g
	return document(r, d, nil)
}

func roundedRect(parent *etree.Element, x, y, w, h, radius float64) *etree.Element {
	e := parent.CreateElement("rect")
	e.CreateAttr("x", Num(x))
	e.CreateAttr("y", Num(y))
	e.CreateAttr("width", Num(w))
	e.CreateAttr("height", Num(h))
	if radius > 0 {
		e.CreateAttr("rx", Num(radius))
		e.CreateAttr("ry", Num(radius))
	}
	return e
}

// gradient appends a linear or radial gradient definition. Stop opacity comes
// from each stop color's alpha.
func gradient(defs *etree.Element, id string, g *style.Gradient, d Descriptor) {
	var e *etree.Element
	if d.Radial {
		e = defs.CreateElement("radialGradient")
		e.CreateAttr("id", id)
		e.CreateAttr("cx", "50%")
		e.CreateAttr("cy", "50%")
		e.CreateAttr("r", "50%")
	} else {
		x1, y1, x2, y2 := 0.0, 0.0, 0.0, 100.0
		if g != nil {
			x1, y1, x2, y2 = g.Vector()
		}
		e = defs.CreateElement("linearGradient")
		e.CreateAttr("id", id)
		e.CreateAttr("x1", Num(x1)+"%")
		e.CreateAttr("y1", Num(y1)+"%")
		e.CreateAttr("x2", Num(x2)+"%")
		e.CreateAttr("y2", Num(y2)+"%")
	}
	for _, s := range d.Overlay {
		stop := e.CreateElement("stop")
		stop.CreateAttr("offset", Num(s.Offset)+"%")
		stop.CreateAttr("stop-color", s.Color.Hex())
		stop.CreateAttr("stop-opacity", Num(s.Color.Alpha()))
	}
}

// Num formats v with at most two decimals and no trailing zeros.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NumList formats values as a comma separated list.
func NumList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = Num(v)
	}
	return strings.Join(parts, ",")
}
