package slide

import "fmt"

// Format names a slide size preset.
type Format string

const (
	FormatWide     Format = "wide"
	FormatStandard Format = "standard"
)

// Size is a slide viewport in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// formatSizes are the pixel viewports of the presets (16:9 at 1280x720 and
// 4:3 at 720x540).
var formatSizes = map[Format]Size{
	FormatWide:     {Width: 1280, Height: 720},
	FormatStandard: {Width: 720, Height: 540},
}

// SizeOf returns the viewport of a format. Unknown formats report false.
func SizeOf(f Format) (Size, bool) {
	if f == "" {
		f = FormatWide
	}
	s, ok := formatSizes[f]
	return s, ok
}

// Defaults are deck-wide text defaults applied when an element leaves the
// property unset.
type Defaults struct {
	FontSize   string `json:"fontSize,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Background describes a slide background.
type Background struct {
	Color string `json:"color,omitempty"`
	Image string `json:"image,omitempty"`
	Size  string `json:"size,omitempty"` // cover, contain, fit, none
}

// Deck is a whole presentation.
type Deck struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      Format   `json:"format,omitempty"`
	Defaults    Defaults `json:"defaults,omitempty"`
	Style       Style    `json:"style,omitempty"`
	Slides      []*Slide `json:"slides"`
}

// Slide is one page. Its children are laid out inside an implicit root
// container sized to the viewport.
type Slide struct {
	Title      string      `json:"title,omitempty"`
	Background *Background `json:"background,omitempty"`
	Style      Style       `json:"style,omitempty"`
	Children   []*Element  `json:"children,omitempty"`
}

// Validate checks deck-level invariants that make the whole invocation
// meaningless when violated.
func (d *Deck) Validate() error {
	if d == nil {
		return fmt.Errorf("nil deck")
	}
	if _, ok := SizeOf(d.Format); !ok {
		return fmt.Errorf("unknown deck format %q (must be 'wide' or 'standard')", d.Format)
	}
	for i, s := range d.Slides {
		if s == nil {
			return fmt.Errorf("slide %d is null", i)
		}
	}
	return nil
}

// Root builds the implicit root container of a slide. Deck padding applies
// first and slide style overrides it. The root is a stretched column, which
// matches how slide content flows by default.
func (s *Slide) Root(deckStyle Style) *Element {
	style := Style{
		"flexDirection":  "column",
		"alignItems":     "stretch",
		"justifyContent": "flex-start",
	}
	for k, v := range deckStyle {
		style[k] = v
	}
	for k, v := range s.Style {
		style[k] = v
	}
	return &Element{
		Kind:     KindContainer,
		ID:       "root",
		Style:    style,
		Children: s.Children,
	}
}

// HeadingFontSize returns the default font size in px for a heading level.
// Levels outside 1-6 fall back to level 1.
func HeadingFontSize(level int) float64 {
	switch level {
	case 2:
		return 20
	case 3:
		return 18
	case 4:
		return 16
	case 5:
		return 14
	case 6:
		return 12
	default:
		return 24
	}
}

// DefaultFontSize is the font size in px of text without an explicit size.
const DefaultFontSize = 14.0
