// Package fonts provides the embedded Go font family and a text measurer
// backed by its metrics.
//
// The fonts ship with golang.org/x/image, so measurement and PNG previews
// work without system fonts. Faces are parsed once and cached per size and
// variant.
package fonts

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/style"
)

// FontFamily is the family name reported for the embedded fonts.
const FontFamily = "Go"

// Variant selects one of the embedded font files.
type Variant int

const (
	Regular Variant = iota
	Bold
	Italic
	BoldItalic
)

// VariantOf returns the variant matching a text style.
func VariantOf(t style.Text) Variant {
	switch {
	case t.Bold && t.Italic:
		return BoldItalic
	case t.Bold:
		return Bold
	case t.Italic:
		return Italic
	default:
		return Regular
	}
}

// TTF returns the raw font file of a variant.
func TTF(v Variant) []byte {
	switch v {
	case Bold:
		return gobold.TTF
	case Italic:
		return goitalic.TTF
	case BoldItalic:
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}

var (
	parseOnce sync.Once
	parsed    [4]*opentype.Font
	parseErr  error

	// faceMu guards faces and every use of a cached face: font.Face
	// implementations are not safe for concurrent use.
	faceMu sync.Mutex
	faces  = map[faceKey]font.Face{}
)

type faceKey struct {
	variant Variant
	size    float64
}

func parseAll() {
	for v := Regular; v <= BoldItalic; v++ {
		f, err := opentype.Parse(TTF(v))
		if err != nil {
			parseErr = fmt.Errorf("parse embedded font %d: %w", v, err)
			return
		}
		parsed[v] = f
	}
}

// NewFace returns a new face of the variant at size px. The caller owns the
// face and should close it when done.
func NewFace(v Variant, size float64) (font.Face, error) {
	parseOnce.Do(parseAll)
	if parseErr != nil {
		return nil, parseErr
	}
	return opentype.NewFace(parsed[v], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// cachedFace returns a shared face. faceMu must be held.
func cachedFace(v Variant, size float64) (font.Face, error) {
	key := faceKey{variant: v, size: size}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	f, err := NewFace(v, size)
	if err != nil {
		return nil, err
	}
	faces[key] = f
	return f, nil
}

// Measurer measures text with the embedded font metrics and wraps at word
// boundaries. It falls back to [layout.Heuristic] if a face cannot be built.
type Measurer struct{}

var _ layout.TextMeasurer = (*Measurer)(nil)

// NewMeasurer returns a font-backed measurer.
func NewMeasurer() *Measurer { return &Measurer{} }

func (m *Measurer) Measure(content string, t style.Text, maxWidth float64) (float64, float64) {
	if content == "" || t.Size <= 0 {
		return 0, 0
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	face, err := cachedFace(VariantOf(t), t.Size)
	if err != nil {
		return layout.Heuristic{}.Measure(content, t, maxWidth)
	}
	var width float64
	lines := breakLines(face, content, maxWidth)
	for _, line := range lines {
		width = max(width, advance(face, line))
	}
	if bounded(maxWidth) {
		width = min(width, maxWidth)
	}
	return width, float64(len(lines)) * layout.LineHeight(t)
}

// Lines breaks content into the lines a renderer should draw: one per
// paragraph, wrapped at word boundaries to maxWidth when it is finite and
// positive. It returns nil for empty content.
func Lines(content string, t style.Text, maxWidth float64) []string {
	if content == "" || t.Size <= 0 {
		return nil
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	face, err := cachedFace(VariantOf(t), t.Size)
	if err != nil {
		return strings.Split(content, "\n")
	}
	return breakLines(face, content, maxWidth)
}

func bounded(maxWidth float64) bool {
	return maxWidth > 0 && !math.IsInf(maxWidth, 1)
}

func breakLines(face font.Face, content string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(content, "\n") {
		if !bounded(maxWidth) {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrap(face, para, maxWidth)...)
	}
	return lines
}

func advance(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// wrap breaks a paragraph greedily at spaces. A single word wider than
// maxWidth occupies its own line.
func wrap(face font.Face, para string, maxWidth float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if advance(face, candidate) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}
