// Package pipeline runs decks through the resolve → solve → map → render
// stages.
//
// This package implements the complete deck pipeline that the CLI uses. By
// centralizing it, every entry point produces identical instructions and
// artifacts for the same deck and options.
//
// # Architecture
//
// Every slide passes through the same stages, in input order:
//
//  1. Resolve: deck defaults and slide styles become [style.ResolvedStyle]
//  2. Solve: the flexbox solver computes a geometry tree
//  3. Map: geometry becomes draw instructions, glass frames are synthesized
//
// The instruction lists of all slides are then rendered once per requested
// format (JSON, SVG, PNG, PDF).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, effect.FileSource{Root: dir}, logger)
//	result, err := runner.Execute(ctx, deck, pipeline.Options{
//	    Formats: []string{"json", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Diagnostics never fail a run. They are collected per slide in
// [SlideResult.Diagnostics].
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slideweave/pkg/cache"
	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/render/sink"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDPI is the px-per-inch ratio of instruction boxes.
	DefaultDPI = render.DefaultDPI

	// DefaultBlurStrength is the glass blur sigma in px.
	DefaultBlurStrength = effect.DefaultBlurStrength

	// DefaultQuality is the JPEG quality of glass rasters.
	DefaultQuality = effect.DefaultQuality

	// DefaultConcurrency bounds concurrent glass syntheses per slide.
	DefaultConcurrency = render.DefaultConcurrency

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// Text measurers.
const (
	MeasurerHeuristic = "heuristic"
	MeasurerFont      = "font"
)

// ValidMeasurers is the set of supported text measurers.
var ValidMeasurers = map[string]bool{
	MeasurerHeuristic: true,
	MeasurerFont:      true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Layout options
	Format   slide.Format `json:"format,omitempty"` // overrides the deck format
	Width    float64      `json:"width,omitempty"`  // explicit viewport, overrides Format
	Height   float64      `json:"height,omitempty"`
	Measurer string       `json:"measurer,omitempty"`

	// Mapping options
	DPI          float64 `json:"dpi,omitempty"`
	BlurStrength float64 `json:"blur_strength,omitempty"`
	Quality      int     `json:"quality,omitempty"`
	Concurrency  int     `json:"concurrency,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`       // PNG only
	Diagnostics bool     `json:"diagnostics,omitempty"` // include diagnostics in JSON
	Refresh     bool     `json:"refresh,omitempty"`     // bypass cache reads

	// Cache options
	CacheTTL time.Duration `json:"cache_ttl,omitempty"` // artifact lifetime (default: 7 days)

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Title and Format describe the deck.
	Title  string
	Format slide.Format

	// Slides holds the per-slide geometry, instructions, and diagnostics in
	// input order.
	Slides []SlideResult

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// SlideResult is the outcome of one slide.
type SlideResult struct {
	Index         int
	Title         string
	Width, Height float64
	Geometry      *layout.GeometryNode
	Instructions  []render.Instruction
	Diagnostics   diag.List
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SlideCount       int
	NodeCount        int
	InstructionCount int
	DiagnosticCount  int
	LayoutTime       time.Duration
	RenderTime       time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // whether all artifacts came from cache
}

// Pages converts the slide results for the sinks.
func (r *Result) Pages() []sink.Page {
	pages := make([]sink.Page, len(r.Slides))
	for i, s := range r.Slides {
		pages[i] = sink.Page{
			Index:        s.Index,
			Title:        s.Title,
			Width:        s.Width,
			Height:       s.Height,
			Instructions: s.Instructions,
			Diagnostics:  s.Diagnostics,
		}
	}
	return pages
}

// Diagnostics returns the diagnostics of all slides in order.
func (r *Result) Diagnostics() diag.List {
	var out diag.List
	for _, s := range r.Slides {
		out.Extend(s.Diagnostics)
	}
	return out
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMeasurer checks that a text measurer name is valid.
func ValidateMeasurer(m string) error {
	if !ValidMeasurers[m] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid measurer: %q (must be one of: heuristic, font)", m)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every field.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Measurer == "" {
		o.Measurer = MeasurerHeuristic
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.BlurStrength == 0 {
		o.BlurStrength = DefaultBlurStrength
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = cache.ArtifactTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if o.Format != "" {
		if _, ok := slide.SizeOf(o.Format); !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid slide format: %q (must be 'wide' or 'standard')", o.Format)
		}
	}
	if (o.Width == 0) != (o.Height == 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "width and height must be set together")
	}
	if o.Width != 0 {
		if err := errors.ValidateSlideSize(o.Width, o.Height); err != nil {
			return err
		}
	}
	if err := ValidateMeasurer(o.Measurer); err != nil {
		return err
	}
	if o.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "dpi must be positive, got %v", o.DPI)
	}
	if o.BlurStrength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "blur strength must not be negative, got %v", o.BlurStrength)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "quality must be in 1-100, got %d", o.Quality)
	}
	if o.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", o.Concurrency)
	}
	if o.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive, got %v", o.Scale)
	}
	if o.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative, got %v", o.CacheTTL)
	}
	return ValidateFormats(o.Formats)
}

// Viewport returns the slide size for deck. An explicit Width/Height wins
// over Format, which wins over the deck's own format.
func (o *Options) Viewport(deck *slide.Deck) (slide.Size, error) {
	if o.Width > 0 && o.Height > 0 {
		return slide.Size{Width: o.Width, Height: o.Height}, nil
	}
	f := o.Format
	if f == "" && deck != nil {
		f = deck.Format
	}
	size, ok := slide.SizeOf(f)
	if !ok {
		return slide.Size{}, errors.New(errors.ErrCodeInvalidInput, "unknown deck format %q", f)
	}
	return size, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, DPI: o.DPI}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatJSON:
		k.Diagnostics = o.Diagnostics
	}
	return k
}

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("formats=%v measurer=%s dpi=%v blur=%v quality=%d", o.Formats, o.Measurer, o.DPI, o.BlurStrength, o.Quality)
}
