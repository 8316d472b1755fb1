package render

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/slide"
	"github.com/matzehuels/slideweave/pkg/style"
)

// DefaultDPI is the px-per-inch ratio of slide coordinates.
const DefaultDPI = 96.0

// DefaultConcurrency bounds concurrent glass syntheses per slide.
const DefaultConcurrency = 4

// namespace seeds deterministic instruction ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/slideweave/instruction"))

// Background is the slide background. The image reference is what glass
// frames blur.
type Background struct {
	Color style.Color
	Image string
	Size  style.Fit
}

// Mapper converts geometry to instructions. The zero value maps at 96 DPI and
// degrades glass frames to their overlay.
type Mapper struct {
	DPI float64

	// Effects synthesizes glass frames. Nil means a synthesizer without an
	// image source.
	Effects *effect.Synthesizer

	// Background, when set, is emitted as the first instruction and feeds
	// glass frames.
	Background *Background

	// SlideWidth and SlideHeight default to the root box.
	SlideWidth, SlideHeight float64

	// BlurStrength and Quality are the glass defaults; 0 means the effect
	// package defaults.
	BlurStrength float64
	Quality      int

	Concurrency int
}

// glassJob is a pending synthesis whose result goes to instruction index at.
type glassJob struct {
	at  int
	req effect.Request
}

type mapping struct {
	m              *Mapper
	dpi            float64
	slideW, slideH float64
	out            []Instruction
	diags          diag.List
	jobs           []glassJob
}

// Map walks root in document order and returns its instructions. Instructions
// are stably ordered by z-index, so equal z keeps document order. Glass frames
// are synthesized concurrently. The only errors are a nil root and a
// cancelled ctx, in which case no instructions are returned.
func (m *Mapper) Map(ctx context.Context, root *layout.GeometryNode) ([]Instruction, diag.List, error) {
	if root == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "nil geometry")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	mp := &mapping{m: m, dpi: m.DPI}
	if mp.dpi <= 0 {
		mp.dpi = DefaultDPI
	}
	mp.slideW, mp.slideH = m.SlideWidth, m.SlideHeight
	if mp.slideW <= 0 {
		mp.slideW = root.Width
	}
	if mp.slideH <= 0 {
		mp.slideH = root.Height
	}

	mp.background(root)
	root.Walk(func(n *layout.GeometryNode, _ int) bool {
		if n.Placeholder {
			return false
		}
		mp.node(n)
		return true
	})

	if err := mp.synthesize(ctx); err != nil {
		return nil, nil, err
	}
	slices.SortStableFunc(mp.out, func(a, b Instruction) int { return cmp.Compare(a.Z, b.Z) })
	return mp.out, mp.diags, nil
}

func (mp *mapping) background(root *layout.GeometryNode) {
	bg := mp.m.Background
	if bg == nil {
		return
	}
	box := &layout.GeometryNode{Width: mp.slideW, Height: mp.slideH, Path: root.Path + "#background"}
	if bg.Color.IsVisible() {
		mp.emit(box, TypeShape, func(in *Instruction) {
			in.Z = minZ
			in.Shape = &Shape{Fill: bg.Color, Opacity: 1}
		})
	}
	if bg.Image != "" {
		fit := bg.Size
		if fit == "" {
			fit = style.FitCover
		}
		mp.emit(box, TypeImage, func(in *Instruction) {
			in.Z = minZ
			in.Image = &Image{Src: bg.Image, Fit: fit, Opacity: 1}
		})
	}
}

// minZ keeps the slide background below any element z-index, which is
// bounded by style.MaxStackIndex.
const minZ = -1 << 30

func (mp *mapping) node(n *layout.GeometryNode) {
	switch n.Kind {
	case slide.KindContainer:
		mp.container(n)
	case slide.KindFrame:
		mp.frame(n)
	case slide.KindText, slide.KindHeading:
		mp.text(n)
	case slide.KindImage:
		mp.image(n)
	default:
		mp.diags.Addf(errors.ErrCodeInvalidTreeShape, n.Path, "", "cannot map element kind %s", n.Kind)
	}
}

func (mp *mapping) container(n *layout.GeometryNode) {
	s := &n.Style
	if s.Background.IsVisible() || s.Gradient != nil || s.Border.IsVisible() {
		mp.emit(n, TypeShape, func(in *Instruction) { in.Shape = shapeOf(n) })
	}
	mp.backgroundImage(n)
}

func (mp *mapping) frame(n *layout.GeometryNode) {
	s := &n.Style
	switch {
	case s.Glass != nil:
		at := mp.emit(n, TypeVector, func(in *Instruction) {
			in.Vector = &Vector{Glass: true, Shadow: s.Shadow, Glow: s.Glow}
		})
		mp.jobs = append(mp.jobs, glassJob{at: at, req: mp.glassRequest(n)})

	case s.Gradient != nil:
		svg, err := effect.Panel(mp.panelRequest(n), s.Gradient)
		if err != nil {
			// Fall back to a shape that carries the stops.
			mp.emit(n, TypeShape, func(in *Instruction) { in.Shape = shapeOf(n) })
			break
		}
		mp.emit(n, TypeVector, func(in *Instruction) {
			in.Vector = &Vector{SVG: string(svg), Shadow: s.Shadow, Glow: s.Glow}
		})

	case s.HasVisual():
		mp.emit(n, TypeShape, func(in *Instruction) { in.Shape = shapeOf(n) })
	}
	mp.backgroundImage(n)
}

func (mp *mapping) backgroundImage(n *layout.GeometryNode) {
	s := &n.Style
	if s.BackgroundImage == "" {
		return
	}
	mp.emit(n, TypeImage, func(in *Instruction) {
		in.ID = mp.id(n.Path + "#background", TypeImage)
		in.Image = &Image{Src: s.BackgroundImage, Fit: s.BackgroundSize, Opacity: s.Opacity, Radius: n.BorderRadius}
	})
}

func (mp *mapping) text(n *layout.GeometryNode) {
	s := &n.Style
	var content string
	level := 0
	if n.Element != nil {
		content = n.Element.Content
		if n.Kind == slide.KindHeading {
			level = max(1, n.Element.Level)
		}
	}
	mp.emit(n, TypeText, func(in *Instruction) {
		in.Text = &Text{
			Content:    content,
			Size:       s.Text.Size,
			Family:     s.Text.Family,
			Color:      s.Text.Color,
			Bold:       s.Text.Bold,
			Italic:     s.Text.Italic,
			Align:      s.Text.Align,
			LineHeight: s.Text.LineHeight,
			Heading:    level,
			Inset:      n.Padding,
			Shadow:     s.Text.Shadow,
			Radius:     n.BorderRadius,
			Border:     strokeOf(n),
			BoxShadow:  s.Shadow,
			Glow:       s.Glow,
		}
		if s.Background.IsVisible() {
			in.Text.Fill = s.Background
		}
	})
}

func (mp *mapping) image(n *layout.GeometryNode) {
	var src, alt string
	if n.Element != nil {
		src, alt = n.Element.Src, n.Element.Alt
	}
	s := &n.Style
	mp.emit(n, TypeImage, func(in *Instruction) {
		in.Image = &Image{
			Src:     src,
			Alt:     alt,
			Fit:     s.Fit,
			Opacity: s.Opacity,
			Radius:  n.BorderRadius,
			Shadow:  s.Shadow,
			Glow:    s.Glow,
			Border:  strokeOf(n),
		}
	})
}

// shapeOf builds the shape payload of a box. Attributes pass through as
// resolved.
func shapeOf(n *layout.GeometryNode) *Shape {
	s := &n.Style
	sh := &Shape{
		Gradient:   s.Gradient,
		Opacity:    s.Opacity,
		Radius:     n.BorderRadius,
		Shadow:     s.Shadow,
		Glow:       s.Glow,
		Reflection: s.Reflection,
	}
	if s.Background.IsVisible() {
		sh.Fill = s.Background
	}
	sh.Border = strokeOf(n)
	return sh
}

// strokeOf returns the border of a box, or nil when it has none.
func strokeOf(n *layout.GeometryNode) *Stroke {
	s := &n.Style
	if !s.Border.IsVisible() {
		return nil
	}
	st := &Stroke{
		Color: s.Border.Color,
		Width: n.BorderWidth,
		Style: s.Border.Style,
		Dash:  s.Border.Style.DashArray(n.BorderWidth),
	}
	if !st.Color.IsSet() {
		st.Color = style.DefaultColor
	}
	return st
}

func (mp *mapping) panelRequest(n *layout.GeometryNode) effect.Request {
	s := &n.Style
	return effect.Request{
		ID:          "fx-" + mp.id(n.Path, TypeVector)[:8],
		Frame:       effect.Box{X: n.Left, Y: n.Top, W: n.Width, H: n.Height},
		Radius:      n.BorderRadius,
		BorderColor: s.Border.Color,
		BorderWidth: n.BorderWidth,
		BorderStyle: s.Border.Style,
	}
}

func (mp *mapping) glassRequest(n *layout.GeometryNode) effect.Request {
	s := &n.Style
	req := mp.panelRequest(n)
	req.SlideWidth, req.SlideHeight = mp.slideW, mp.slideH
	if bg := mp.m.Background; bg != nil {
		req.Background = bg.Image
		req.BackgroundColor = bg.Color
	}
	req.BlurStrength = mp.m.BlurStrength
	if s.Glass.Blur > 0 {
		req.BlurStrength = s.Glass.Blur
	}
	req.Quality = mp.m.Quality
	req.Overlay = s.Gradient
	if s.Background.IsVisible() {
		req.Tint = s.Background
	}
	return req
}

// synthesize runs the pending glass jobs and stores each document at its
// instruction index.
func (mp *mapping) synthesize(ctx context.Context) error {
	if len(mp.jobs) == 0 {
		return nil
	}
	synth := mp.m.Effects
	if synth == nil {
		synth = effect.New(nil)
	}
	limit := mp.m.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]diag.List, len(mp.jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range mp.jobs {
		g.Go(func() error {
			doc, d, err := synth.Synthesize(gctx, job.req)
			if err != nil {
				return err
			}
			v := mp.out[job.at].Vector
			v.SVG = string(doc.SVG)
			v.Degraded = doc.Degraded
			results[i] = d.WithPath(mp.out[job.at].Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, d := range results {
		mp.diags.Extend(d)
	}
	return nil
}

// emit appends an instruction for box n and returns its index.
func (mp *mapping) emit(n *layout.GeometryNode, t Type, fill func(*Instruction)) int {
	in := Instruction{
		ID:   mp.id(n.Path, t),
		Type: t,
		Path: n.Path,
		Box: Box{
			X: n.Left / mp.dpi,
			Y: n.Top / mp.dpi,
			W: n.Width / mp.dpi,
			H: n.Height / mp.dpi,
		},
		Px: PxBox{Left: n.Left, Top: n.Top, Width: n.Width, Height: n.Height},
		Z:  n.Style.Z,
	}
	fill(&in)
	mp.out = append(mp.out, in)
	return len(mp.out) - 1
}

func (mp *mapping) id(path string, t Type) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s:%s", path, t))).String()
}
