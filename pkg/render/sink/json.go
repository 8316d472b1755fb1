package sink

import (
	"encoding/json"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title       string
	format      slide.Format
	dpi         float64
	diagnostics bool
	compact     bool
}

// WithJSONTitle records the deck title.
func WithJSONTitle(title string) JSONOption { return func(r *jsonRenderer) { r.title = title } }

// WithJSONFormat records the deck format ("wide" or "standard").
func WithJSONFormat(f slide.Format) JSONOption { return func(r *jsonRenderer) { r.format = f } }

// WithJSONDPI records the DPI the instruction boxes were mapped at.
func WithJSONDPI(dpi float64) JSONOption { return func(r *jsonRenderer) { r.dpi = dpi } }

// WithJSONDiagnostics includes per-slide diagnostics.
func WithJSONDiagnostics() JSONOption { return func(r *jsonRenderer) { r.diagnostics = true } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Title  string       `json:"title,omitempty"`
	Format slide.Format `json:"format,omitempty"`
	DPI    float64      `json:"dpi"`
	Slides []jsonSlide  `json:"slides"`
}

type jsonSlide struct {
	Index        int                  `json:"index"`
	Title        string               `json:"title,omitempty"`
	Width        float64              `json:"width"`
	Height       float64              `json:"height"`
	Instructions []render.Instruction `json:"instructions"`
	Diagnostics  diag.List            `json:"diagnostics,omitempty"`
}

// RenderJSON writes the instruction lists of pages as one JSON document. Empty
// instruction lists are written as [] rather than null so consumers can
// iterate without checks.
func RenderJSON(pages []Page, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{dpi: render.DefaultDPI}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:  r.title,
		Format: r.format,
		DPI:    r.dpi,
		Slides: make([]jsonSlide, len(pages)),
	}
	for i, p := range pages {
		s := jsonSlide{
			Index:        p.Index,
			Title:        p.Title,
			Width:        p.Width,
			Height:       p.Height,
			Instructions: p.Instructions,
		}
		if s.Instructions == nil {
			s.Instructions = []render.Instruction{}
		}
		if r.diagnostics {
			s.Diagnostics = p.Diagnostics
		}
		out.Slides[i] = s
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
