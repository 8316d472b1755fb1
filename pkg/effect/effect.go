// Package effect synthesizes glass (backdrop blur) frames as standalone SVG
// documents.
//
// A glass frame shows the part of the slide background it covers, blurred,
// under a translucent overlay. Presentation formats cannot blur at render
// time, so the synthesizer bakes it: the covered region of the background
// image is cropped, blurred, downsampled and embedded as a JPEG data URI in
// an SVG clipped to the frame's rounded rect.
//
// Output depends only on the request and the image bytes, so identical
// inputs produce byte-identical documents. An optional [cache.Cache] memoizes
// the encoded raster.
package effect

import (
	"bytes"
	"context"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"

	// Decoders beyond the png/jpeg/gif set that imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/slideweave/pkg/cache"
	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/observability"
	"github.com/matzehuels/slideweave/pkg/style"
)

const (
	// DefaultBlurStrength is the Gaussian sigma used when a request sets none.
	DefaultBlurStrength = 5.0

	// DefaultQuality is the JPEG quality and resample percentage used when a
	// request sets none.
	DefaultQuality = 70

	// DefaultTintOpacity is the overlay opacity of an opaque tint color.
	DefaultTintOpacity = 0.25
)

// DefaultTint is the overlay color when neither the frame nor the slide
// provides one.
const DefaultTint style.Color = "#ffffff"

// Box is a rectangle in slide px.
type Box struct {
	X, Y, W, H float64
}

// Request describes one glass frame.
type Request struct {
	// ID prefixes element ids inside the document.
	ID string

	Frame                   Box
	SlideWidth, SlideHeight float64

	// Background is the slide background image reference. Empty means the
	// slide has none and the document carries only the overlay.
	Background string

	// BackgroundColor is the slide background color. Without an image it
	// becomes the tint base.
	BackgroundColor style.Color

	BlurStrength float64
	Quality      int
	Radius       float64

	BorderColor style.Color
	BorderWidth float64
	BorderStyle style.BorderStyle

	// Overlay is a gradient drawn over the blurred raster. When nil a flat
	// Tint is drawn instead.
	Overlay *style.Gradient
	Tint    style.Color
}

// Descriptor is the resolved recipe of one effect.
type Descriptor struct {
	Source  string          `json:"source,omitempty"`
	Crop    image.Rectangle `json:"crop"`
	Blur    float64         `json:"blur"`
	Quality int             `json:"quality"`
	Size    image.Point     `json:"size"` // encoded raster size
	Overlay []style.Stop    `json:"overlay"`
	Radial  bool            `json:"radial,omitempty"`
	Opacity float64         `json:"opacity"` // overlay opacity for a flat tint
}

// Document is a synthesized effect.
type Document struct {
	SVG           []byte
	Width, Height float64
	Descriptor    Descriptor

	// Degraded is set when no backdrop raster could be embedded.
	Degraded bool
	// Cached is set when the raster came from the cache.
	Cached bool
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCache memoizes encoded rasters in c under keys from keyer. A nil keyer
// means [cache.NewDefaultKeyer].
func WithCache(c cache.Cache, keyer cache.Keyer) Option {
	return func(s *Synthesizer) {
		s.cache = c
		s.keyer = keyer
		if s.keyer == nil {
			s.keyer = cache.NewDefaultKeyer()
		}
	}
}

// Synthesizer builds glass documents. It is safe for concurrent use when its
// source and cache are.
type Synthesizer struct {
	source ImageSource
	cache  cache.Cache
	keyer  cache.Keyer
}

// New returns a synthesizer that loads backgrounds from source. A nil source
// means every request degrades to the overlay.
func New(source ImageSource, opts ...Option) *Synthesizer {
	s := &Synthesizer{source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the document for req. A background that cannot be loaded
// or decoded degrades to an overlay-only document and an
// EFFECT_SOURCE_UNAVAILABLE diagnostic. The only error is a cancelled ctx.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*Document, diag.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start := time.Now()
	req = req.normalized()

	desc := Descriptor{
		Source:  req.Background,
		Blur:    req.BlurStrength,
		Quality: req.Quality,
	}
	desc.Overlay, desc.Radial, desc.Opacity = overlay(req)

	var (
		diags  diag.List
		raster []byte
		cached bool
	)
	if req.Background != "" {
		var err error
		raster, cached, err = s.backdrop(ctx, req, &desc)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if err != nil {
			raster = nil
			diags.Addf(errors.ErrCodeEffectSourceUnavailable, "", "backgroundImage",
				"glass backdrop unavailable: %s; drawing the overlay only", errors.UserMessage(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	svg, err := document(req, desc, raster)
	if err != nil {
		return nil, diags, errors.Wrap(errors.ErrCodeInternal, err, "write effect document")
	}

	doc := &Document{
		SVG:        svg,
		Width:      req.Frame.W,
		Height:     req.Frame.H,
		Descriptor: desc,
		Degraded:   raster == nil,
		Cached:     cached,
	}
	observability.Effect().OnSynthesize(ctx, doc.Cached, doc.Degraded, len(svg), time.Since(start))
	return doc, diags, nil
}

// normalized fills defaults and clamps out-of-range values.
func (r Request) normalized() Request {
	if r.ID == "" {
		r.ID = "glass"
	}
	r.Frame.W = max(0, r.Frame.W)
	r.Frame.H = max(0, r.Frame.H)
	if r.BlurStrength <= 0 {
		r.BlurStrength = DefaultBlurStrength
	}
	if r.Quality <= 0 {
		r.Quality = DefaultQuality
	}
	r.Quality = min(100, r.Quality)
	r.Radius = min(max(0, r.Radius), r.Frame.W/2, r.Frame.H/2)
	r.BorderWidth = max(0, r.BorderWidth)
	return r
}

// overlay picks the overlay stops. A frame gradient wins; otherwise a flat
// tint from the frame color, the slide color lightened toward white, or white.
func overlay(r Request) ([]style.Stop, bool, float64) {
	if r.Overlay != nil && len(r.Overlay.Stops) > 0 {
		// A single stop is a flat fill of that color.
		return r.Overlay.Stops, r.Overlay.Type == style.RadialGradient, r.Overlay.Stops[0].Color.Alpha()
	}
	tint := DefaultTint
	switch {
	case r.Tint.IsVisible():
		tint = r.Tint
	case r.Background == "" && r.BackgroundColor.IsVisible():
		tint = r.BackgroundColor.Blend(DefaultTint, 0.5)
	}
	opacity := DefaultTintOpacity
	if a := tint.Alpha(); a < 1 {
		opacity = a
	}
	return []style.Stop{{Color: style.Color(tint.Hex()), Offset: 0}}, false, opacity
}

// backdrop returns the encoded raster for req, from the cache when possible.
func (s *Synthesizer) backdrop(ctx context.Context, req Request, desc *Descriptor) ([]byte, bool, error) {
	if s.source == nil {
		return nil, false, errors.New(errors.ErrCodeEffectSourceUnavailable, "no image source configured")
	}
	data, err := s.source.Load(ctx, req.Background)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeEffectSourceUnavailable, err, "decode %s", req.Background)
	}
	desc.Crop = CropRect(req.Frame, req.SlideWidth, req.SlideHeight, cfg.Width, cfg.Height)
	if desc.Crop.Empty() {
		return nil, false, errors.New(errors.ErrCodeEffectSourceUnavailable, "frame does not overlap %s", req.Background)
	}
	desc.Size = Resampled(desc.Crop.Size(), desc.Quality)

	var key string
	if s.cache != nil {
		key = s.keyer.EffectKey(cache.EffectKeyOpts{
			SourceHash: cache.Hash(data),
			Crop:       desc.Crop,
			Blur:       desc.Blur,
			Quality:    desc.Quality,
			Width:      desc.Size.X,
			Height:     desc.Size.Y,
		})
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return b, true, nil
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeEffectSourceUnavailable, err, "decode %s", req.Background)
	}
	out, err := blur(ctx, img, *desc)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		// A failed write only costs a recompute next time.
		_ = s.cache.Set(ctx, key, out, cache.EffectTTL)
	}
	return out, false, nil
}

// blur crops, blurs, downsamples and JPEG-encodes img.
func blur(ctx context.Context, img image.Image, d Descriptor) ([]byte, error) {
	out := imaging.Crop(img, d.Crop)
	out = imaging.Blur(out, d.Blur)
	if out.Bounds().Size() != d.Size {
		out = imaging.Resize(out, d.Size.X, d.Size.Y, imaging.Lanczos)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(d.Quality)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode backdrop")
	}
	return buf.Bytes(), nil
}

// CropRect maps a frame in slide px onto an image of imgW×imgH px stretched
// over the slide, clamped to the image bounds.
func CropRect(frame Box, slideW, slideH float64, imgW, imgH int) image.Rectangle {
	if slideW <= 0 || slideH <= 0 || imgW <= 0 || imgH <= 0 {
		return image.Rectangle{}
	}
	sx := float64(imgW) / slideW
	sy := float64(imgH) / slideH
	r := image.Rect(
		int(math.Floor(frame.X*sx)),
		int(math.Floor(frame.Y*sy)),
		int(math.Ceil((frame.X+frame.W)*sx)),
		int(math.Ceil((frame.Y+frame.H)*sy)),
	)
	return r.Intersect(image.Rect(0, 0, imgW, imgH))
}

// Resampled scales size by quality percent, keeping each edge at least 1px.
func Resampled(size image.Point, quality int) image.Point {
	f := float64(min(max(quality, 1), 100)) / 100
	return image.Point{
		X: max(1, int(math.Round(float64(size.X)*f))),
		Y: max(1, int(math.Round(float64(size.Y)*f))),
	}
}
