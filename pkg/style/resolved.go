package style

import (
	"math"
	"strconv"
	"strings"
)

// ResolvedStyle is the per-element style after unit and color resolution. It
// is immutable once built.
type ResolvedStyle struct {
	Width, Height       Length
	MinWidth, MinHeight Length
	MaxWidth, MaxHeight Length
	Margin              Edges
	Padding             Edges
	Gap                 Length

	Direction  Direction
	Grow       float64
	Shrink     float64
	Basis      Length
	Justify    Justify
	AlignItems Align
	AlignSelf  Align

	Background      Color
	Gradient        *Gradient
	BackgroundImage string
	BackgroundSize  Fit
	Border          Border
	Opacity         float64
	Shadow          *Shadow
	Glow            *Glow
	Reflection      map[string]any
	Glass           *Glass

	Fit   Fit
	Text  Text
	Order int
	Z     int
}

// Border describes a box border. Width and Radius are lengths because
// percentages of the box are allowed.
type Border struct {
	Color  Color
	Width  Length
	Radius Length
	Style  BorderStyle
}

// IsVisible reports whether the border would draw anything.
func (b Border) IsVisible() bool {
	return b.Width.IsDefinite() && b.Width.Value > 0
}

// Text holds typography for text and heading elements.
type Text struct {
	Size       float64 // px
	Family     string
	Bold       bool
	Italic     bool
	Color      Color
	Align      TextAlign
	LineHeight float64 // multiplier of Size; 0 means the measurer default
	Shadow     *Shadow
}

// Shadow is an outer or inner shadow descriptor passed through to sinks.
type Shadow struct {
	Type    string  `json:"type"` // outer or inner
	Color   Color   `json:"color"`
	Blur    float64 `json:"blur"`   // px
	Offset  float64 `json:"offset"` // px
	Angle   float64 `json:"angle"`  // degrees
	Opacity float64 `json:"opacity"`
}

// Glow is a soft outline descriptor passed through to sinks.
type Glow struct {
	Size    float64 `json:"size"` // px
	Color   Color   `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Glass requests a synthesized backdrop blur. A zero Blur means the
// configured default strength.
type Glass struct {
	Blur float64 `json:"blur,omitempty"`
}

// GradientType distinguishes linear and radial gradients.
type GradientType string

const (
	LinearGradient GradientType = "linearGradient"
	RadialGradient GradientType = "radialGradient"
)

// Stop is a gradient color stop. Offset is a percentage in [0,100].
type Stop struct {
	Color  Color   `json:"color"`
	Offset float64 `json:"offset"`
}

// Gradient is a background gradient.
type Gradient struct {
	Type      GradientType `json:"type"`
	Direction string       `json:"direction,omitempty"`
	Stops     []Stop       `json:"stops"`
}

// Vector returns the gradient line in percent of the bounding box, as used by
// SVG linearGradient x1/y1/x2/y2. Keyword directions map to box edges; angles
// follow CSS where 0deg points up and angles grow clockwise.
func (g Gradient) Vector() (x1, y1, x2, y2 float64) {
	dir := strings.ToLower(strings.TrimSpace(g.Direction))
	switch dir {
	case "", "to bottom":
		return 0, 0, 0, 100
	case "to right":
		return 0, 0, 100, 0
	case "to left":
		return 100, 0, 0, 0
	case "to top":
		return 0, 100, 0, 0
	case "to bottom right":
		return 0, 0, 100, 100
	case "to top left":
		return 100, 100, 0, 0
	case "to top right":
		return 0, 100, 100, 0
	case "to bottom left":
		return 100, 0, 0, 100
	}
	if strings.HasSuffix(dir, "deg") {
		if deg, err := strconv.ParseFloat(strings.TrimSuffix(dir, "deg"), 64); err == nil {
			rad := deg * math.Pi / 180
			sx, cy := math.Sin(rad)*50, math.Cos(rad)*50
			return round2(50 - sx), round2(50 + cy), round2(50 + sx), round2(50 - cy)
		}
	}
	return 0, 0, 0, 100
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// HasVisual reports whether the style paints anything for a box: a visible
// background color, a gradient, a background image or a border.
func (s *ResolvedStyle) HasVisual() bool {
	return s.Background.IsVisible() || s.Gradient != nil || s.BackgroundImage != "" || s.Border.IsVisible()
}

// Default returns the style of an element with no properties.
func Default() ResolvedStyle {
	return ResolvedStyle{
		Width:      Auto,
		Height:     Auto,
		MinWidth:   Auto,
		MinHeight:  Auto,
		MaxWidth:   Auto,
		MaxHeight:  Auto,
		Margin:     UniformEdges(Px(0)),
		Padding:    UniformEdges(Px(0)),
		Gap:        Px(0),
		Direction:  Column,
		Grow:       0,
		Shrink:     1,
		Basis:      Auto,
		Justify:    JustifyStart,
		AlignItems: AlignStart,
		AlignSelf:  AlignAuto,
		Border: Border{
			Width:  Px(0),
			Radius: Px(0),
			Style:  BorderSolid,
		},
		Opacity:        1,
		Fit:            FitContain,
		BackgroundSize: FitCover,
		Text: Text{
			Color: DefaultColor,
			Align: TextLeft,
		},
	}
}
