package sink

import (
	"bytes"
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/fonts"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/style"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	gap    float64
	source effect.ImageSource

	faces map[faceKey]font.Face
}

type faceKey struct {
	variant fonts.Variant
	size    float64
}

// WithScale sets the PNG scale factor (default 1).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGGap sets the space between stacked slides in px.
func WithPNGGap(px float64) PNGOption { return func(r *pngRenderer) { r.gap = max(0, px) } }

// WithPNGSource loads raster images from src. Without it images are drawn as
// placeholders.
func WithPNGSource(src effect.ImageSource) PNGOption {
	return func(r *pngRenderer) { r.source = src }
}

// RenderPNG rasterizes pages, stacked top to bottom, with the embedded Go
// fonts. No external tools are needed.
func RenderPNG(ctx context.Context, pages []Page, opts ...PNGOption) ([]byte, error) {
	r := &pngRenderer{scale: 1, gap: DefaultGap, faces: map[faceKey]font.Face{}}
	for _, opt := range opts {
		opt(r)
	}
	defer r.close()

	w, h, tops := stack(pages, r.gap)
	dc := gg.NewContext(max(1, int(math.Ceil(w*r.scale))), max(1, int(math.Ceil(h*r.scale))))
	dc.SetRGB(0.88, 0.88, 0.88)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dc.Push()
		dc.Translate(0, tops[i])
		dc.SetRGB(1, 1, 1)
		dc.DrawRectangle(0, 0, p.Width, p.Height)
		dc.Fill()
		for _, in := range p.Instructions {
			r.instruction(ctx, dc, in)
		}
		dc.Pop()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) close() {
	for _, f := range r.faces {
		f.Close()
	}
}

func (r *pngRenderer) instruction(ctx context.Context, dc *gg.Context, in render.Instruction) {
	switch in.Type {
	case render.TypeShape:
		r.shape(dc, in)
	case render.TypeText:
		r.text(dc, in)
	case render.TypeImage:
		r.image(ctx, dc, in)
	case render.TypeVector:
		drawVector(dc, in)
	}
}

func roundRect(dc *gg.Context, x, y, w, h, radius float64) {
	if radius > 0 {
		dc.DrawRoundedRectangle(x, y, w, h, min(radius, w/2, h/2))
		return
	}
	dc.DrawRectangle(x, y, w, h)
}

func (r *pngRenderer) shape(dc *gg.Context, in render.Instruction) {
	sh, b := in.Shape, in.Px
	if s := sh.Shadow; s != nil && s.Type != "inner" {
		rad := s.Angle * math.Pi / 180
		dc.SetColor(nrgba(s.Color, s.Opacity*sh.Opacity))
		roundRect(dc, b.Left+s.Offset*math.Cos(rad), b.Top+s.Offset*math.Sin(rad), b.Width, b.Height, sh.Radius)
		dc.Fill()
	}
	switch {
	case sh.Gradient != nil && len(sh.Gradient.Stops) > 0:
		dc.SetFillStyle(ggGradient(sh.Gradient, b, sh.Opacity))
		roundRect(dc, b.Left, b.Top, b.Width, b.Height, sh.Radius)
		dc.Fill()
	case sh.Fill.IsVisible():
		dc.SetColor(nrgba(sh.Fill, sh.Opacity))
		roundRect(dc, b.Left, b.Top, b.Width, b.Height, sh.Radius)
		dc.Fill()
	}
	if bd := sh.Border; bd != nil && bd.Width > 0 {
		in := bd.Width / 2
		dc.SetColor(nrgba(bd.Color, sh.Opacity))
		dc.SetLineWidth(bd.Width)
		dc.SetDash(bd.Dash...)
		roundRect(dc, b.Left+in, b.Top+in, max(0, b.Width-bd.Width), max(0, b.Height-bd.Width), max(0, sh.Radius-in))
		dc.Stroke()
		dc.SetDash()
	}
}

func ggGradient(g *style.Gradient, b render.PxBox, opacity float64) gg.Gradient {
	var grad gg.Gradient
	if g.Type == style.RadialGradient {
		cx, cy := b.Left+b.Width/2, b.Top+b.Height/2
		grad = gg.NewRadialGradient(cx, cy, 0, cx, cy, max(b.Width, b.Height)/2)
	} else {
		x1, y1, x2, y2 := g.Vector()
		grad = gg.NewLinearGradient(
			b.Left+x1/100*b.Width, b.Top+y1/100*b.Height,
			b.Left+x2/100*b.Width, b.Top+y2/100*b.Height,
		)
	}
	for _, s := range g.Stops {
		grad.AddColorStop(s.Offset/100, nrgba(s.Color, opacity))
	}
	return grad
}

func (r *pngRenderer) face(t style.Text) font.Face {
	key := faceKey{variant: fonts.VariantOf(t), size: t.Size}
	if f, ok := r.faces[key]; ok {
		return f
	}
	f, err := fonts.NewFace(key.variant, key.size)
	if err != nil {
		return nil
	}
	r.faces[key] = f
	return f
}

func (r *pngRenderer) text(dc *gg.Context, in render.Instruction) {
	t := in.Text
	ts := style.Text{Size: t.Size, Bold: t.Bold, Italic: t.Italic, LineHeight: t.LineHeight}
	face := r.face(ts)
	if face == nil {
		return
	}
	width := max(0, in.Px.Width-t.Inset.Horizontal())
	lines := fonts.Lines(t.Content, ts, width)
	lh := layout.LineHeight(ts)

	x, ax := in.Px.Left+t.Inset.Left, 0.0
	switch t.Align {
	case style.TextCenter:
		x, ax = in.Px.Left+t.Inset.Left+width/2, 0.5
	case style.TextRight:
		x, ax = in.Px.Left+in.Px.Width-t.Inset.Right, 1
	}

	dc.SetFontFace(face)
	top := in.Px.Top + t.Inset.Top
	draw := func(dx, dy float64) {
		for i, line := range lines {
			dc.DrawStringAnchored(line, x+dx, baseline(top, i, lh, t.Size)+dy, ax, 0)
		}
	}
	if s := t.Shadow; s != nil {
		rad := s.Angle * math.Pi / 180
		dc.SetColor(nrgba(s.Color, s.Opacity))
		draw(s.Offset*math.Cos(rad), s.Offset*math.Sin(rad))
	}
	dc.SetColor(nrgba(t.Color, 1))
	draw(0, 0)
}

func (r *pngRenderer) image(ctx context.Context, dc *gg.Context, in render.Instruction) {
	b := in.Px
	w, h := int(math.Round(b.Width)), int(math.Round(b.Height))
	if w <= 0 || h <= 0 {
		return
	}
	img := r.load(ctx, in.Image.Src)
	if img == nil {
		placeholder(dc, b)
		return
	}

	var fitted image.Image
	x, y := b.Left, b.Top
	switch in.Image.Fit {
	case style.FitContain:
		fitted = imaging.Fit(img, w, h, imaging.Lanczos)
		sz := fitted.Bounds().Size()
		x += float64(w-sz.X) / 2
		y += float64(h-sz.Y) / 2
	case style.FitNone:
		fitted = imaging.Crop(img, image.Rect(0, 0, w, h))
	default:
		fitted = imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	}

	dc.Push()
	if in.Image.Radius > 0 {
		roundRect(dc, b.Left, b.Top, b.Width, b.Height, in.Image.Radius)
		dc.Clip()
	}
	dc.DrawImage(fitted, int(math.Round(x)), int(math.Round(y)))
	dc.ResetClip()
	dc.Pop()
}

func (r *pngRenderer) load(ctx context.Context, src string) image.Image {
	if r.source == nil || src == "" {
		return nil
	}
	data, err := r.source.Load(ctx, src)
	if err != nil {
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// placeholder marks an image that could not be loaded with a crossed box.
func placeholder(dc *gg.Context, b render.PxBox) {
	dc.SetRGBA(0.5, 0.5, 0.5, 0.2)
	dc.DrawRectangle(b.Left, b.Top, b.Width, b.Height)
	dc.Fill()
	dc.SetRGBA(0.5, 0.5, 0.5, 0.8)
	dc.SetLineWidth(1)
	dc.DrawLine(b.Left, b.Top, b.Left+b.Width, b.Top+b.Height)
	dc.DrawLine(b.Left+b.Width, b.Top, b.Left, b.Top+b.Height)
	dc.Stroke()
}
