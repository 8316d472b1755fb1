package sink

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/style"
)

// drawVector paints the subset of SVG that effect documents use: a clipped
// data URI raster followed by plain or gradient filled rects. Other elements
// are skipped.
func drawVector(dc *gg.Context, in render.Instruction) {
	if in.Vector == nil || in.Vector.SVG == "" {
		return
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(in.Vector.SVG); err != nil {
		return
	}
	root := doc.SelectElement("svg")
	if root == nil {
		return
	}

	v := vectorDoc{root: root}
	dc.Push()
	dc.Translate(in.Px.Left, in.Px.Top)
	if w, h := attr(root, "width"), attr(root, "height"); w > 0 && h > 0 {
		dc.Scale(in.Px.Width/w, in.Px.Height/h)
	}
	for _, e := range root.ChildElements() {
		switch e.Tag {
		case "image":
			v.image(dc, e)
		case "rect":
			v.rect(dc, e)
		}
	}
	dc.Pop()
}

type vectorDoc struct {
	root *etree.Element
}

// byID finds a definition referenced as url(#id).
func (v vectorDoc) byID(ref string) *etree.Element {
	id, ok := strings.CutPrefix(ref, "url(#")
	if !ok {
		return nil
	}
	id = strings.TrimSuffix(id, ")")
	return v.root.FindElement("//*[@id='" + id + "']")
}

func (v vectorDoc) image(dc *gg.Context, e *etree.Element) {
	href := e.SelectAttrValue("href", "")
	_, payload, ok := strings.Cut(href, ";base64,")
	if !ok {
		return
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	w, h := int(math.Round(attr(e, "width"))), int(math.Round(attr(e, "height")))
	if w <= 0 || h <= 0 {
		return
	}
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)

	dc.Push()
	if clip := v.byID(e.SelectAttrValue("clip-path", "")); clip != nil {
		if r := clip.SelectElement("rect"); r != nil {
			roundRect(dc, attr(r, "x"), attr(r, "y"), attr(r, "width"), attr(r, "height"), attr(r, "rx"))
			dc.Clip()
		}
	}
	dc.DrawImage(scaled, int(attr(e, "x")), int(attr(e, "y")))
	dc.ResetClip()
	dc.Pop()
}

func (v vectorDoc) rect(dc *gg.Context, e *etree.Element) {
	x, y := attr(e, "x"), attr(e, "y")
	w, h, rx := attr(e, "width"), attr(e, "height"), attr(e, "rx")

	if fill := e.SelectAttrValue("fill", "none"); fill != "none" {
		opacity := attrOr(e, "fill-opacity", 1)
		if strings.HasPrefix(fill, "url(") {
			g := v.byID(fill)
			if g == nil {
				return
			}
			dc.SetFillStyle(v.gradient(g, x, y, w, h, opacity))
		} else {
			dc.SetColor(nrgba(style.Color(fill), opacity))
		}
		roundRect(dc, x, y, w, h, rx)
		dc.Fill()
	}

	if stroke := e.SelectAttrValue("stroke", "none"); stroke != "none" {
		dc.SetColor(nrgba(style.Color(stroke), attrOr(e, "stroke-opacity", 1)))
		dc.SetLineWidth(attrOr(e, "stroke-width", 1))
		dc.SetDash(numList(e.SelectAttrValue("stroke-dasharray", ""))...)
		roundRect(dc, x, y, w, h, rx)
		dc.Stroke()
		dc.SetDash()
	}
}

// gradient builds a gg gradient from a linearGradient or radialGradient
// element with percentage coordinates relative to the rect.
func (v vectorDoc) gradient(g *etree.Element, x, y, w, h, opacity float64) gg.Gradient {
	var grad gg.Gradient
	if g.Tag == "radialGradient" {
		cx, cy := x+w/2, y+h/2
		grad = gg.NewRadialGradient(cx, cy, 0, cx, cy, max(w, h)/2)
	} else {
		x1, y1 := attrOr(g, "x1", 0)/100, attrOr(g, "y1", 0)/100
		x2, y2 := attrOr(g, "x2", 100)/100, attrOr(g, "y2", 0)/100
		grad = gg.NewLinearGradient(x+x1*w, y+y1*h, x+x2*w, y+y2*h)
	}
	for _, s := range g.SelectElements("stop") {
		c := style.Color(s.SelectAttrValue("stop-color", "#000000"))
		grad.AddColorStop(attr(s, "offset")/100, nrgba(c, attrOr(s, "stop-opacity", 1)*opacity))
	}
	return grad
}

func attr(e *etree.Element, key string) float64 { return attrOr(e, key, 0) }

// attrOr parses a numeric attribute, ignoring a trailing %.
func attrOr(e *etree.Element, key string, def float64) float64 {
	raw := strings.TrimSuffix(strings.TrimSpace(e.SelectAttrValue(key, "")), "%")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

func numList(s string) []float64 {
	var out []float64
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if f, err := strconv.ParseFloat(part, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}
