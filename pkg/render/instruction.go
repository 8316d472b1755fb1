package render

import (
	"github.com/matzehuels/slideweave/pkg/style"
)

// Type tags the payload of an Instruction.
type Type string

const (
	TypeShape  Type = "shape"
	TypeText   Type = "text"
	TypeImage  Type = "image"
	TypeVector Type = "vector"
)

// Instruction is one drawing primitive. Exactly one payload field matches
// Type and is non-nil.
type Instruction struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`

	// Path is the element path that produced the instruction.
	Path string `json:"path"`

	Box Box   `json:"box"` // inches
	Px  PxBox `json:"px"`
	Z   int   `json:"z,omitempty"`

	Shape  *Shape  `json:"shape,omitempty"`
	Text   *Text   `json:"text,omitempty"`
	Image  *Image  `json:"image,omitempty"`
	Vector *Vector `json:"vector,omitempty"`
}

// Box is a rectangle in inches.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PxBox is a rectangle in slide px.
type PxBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Shape is a filled and optionally stroked rectangle.
type Shape struct {
	Fill     style.Color     `json:"fill,omitempty"`
	Gradient *style.Gradient `json:"gradient,omitempty"`
	Opacity  float64         `json:"opacity"`

	// Radius is the corner radius in px.
	Radius float64 `json:"radius,omitempty"`

	Border     *Stroke        `json:"border,omitempty"`
	Shadow     *style.Shadow  `json:"shadow,omitempty"`
	Glow       *style.Glow    `json:"glow,omitempty"`
	Reflection map[string]any `json:"reflection,omitempty"`
}

// Stroke is a border. Width and Dash are in px.
type Stroke struct {
	Color style.Color       `json:"color"`
	Width float64           `json:"width"`
	Style style.BorderStyle `json:"style"`
	Dash  []float64         `json:"dash,omitempty"`
}

// Text is one run of text.
type Text struct {
	Content    string          `json:"content"`
	Size       float64         `json:"size"` // px
	Family     string          `json:"family,omitempty"`
	Color      style.Color     `json:"color"`
	Bold       bool            `json:"bold,omitempty"`
	Italic     bool            `json:"italic,omitempty"`
	Align      style.TextAlign `json:"align"`
	LineHeight float64         `json:"lineHeight,omitempty"`
	Heading    int             `json:"heading,omitempty"` // level, 0 for body text
	Inset      style.EdgesPx   `json:"inset"`
	Shadow     *style.Shadow   `json:"shadow,omitempty"`

	// Box attributes of the text element. Sinks that cannot draw them on a
	// text run may ignore them.
	Fill      style.Color   `json:"fill,omitempty"`
	Radius    float64       `json:"radius,omitempty"`
	Border    *Stroke       `json:"border,omitempty"`
	BoxShadow *style.Shadow `json:"boxShadow,omitempty"`
	Glow      *style.Glow   `json:"glow,omitempty"`
}

// Points returns the font size in typographic points.
func (t *Text) Points() float64 { return t.Size * 72 / DefaultDPI }

// Image is a raster placed in its box.
type Image struct {
	Src     string        `json:"src"`
	Alt     string        `json:"alt,omitempty"`
	Fit     style.Fit     `json:"fit"`
	Opacity float64       `json:"opacity"`
	Radius  float64       `json:"radius,omitempty"`
	Shadow  *style.Shadow `json:"shadow,omitempty"`
	Glow    *style.Glow   `json:"glow,omitempty"`
	Border  *Stroke       `json:"border,omitempty"`
}

// Vector is a standalone SVG document placed in its box.
type Vector struct {
	SVG string `json:"svg"`

	// Glass marks a synthesized backdrop effect. Degraded is set when the
	// backdrop could not be embedded.
	Glass    bool `json:"glass,omitempty"`
	Degraded bool `json:"degraded,omitempty"`

	Shadow *style.Shadow `json:"shadow,omitempty"`
	Glow   *style.Glow   `json:"glow,omitempty"`
}
