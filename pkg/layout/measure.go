package layout

import (
	"math"
	"strings"
	"unicode"

	"github.com/matzehuels/slideweave/pkg/style"
)

// DefaultLineHeight is the line box height as a multiple of the font size,
// used when the style leaves lineHeight unset.
const DefaultLineHeight = 1.4

// Unbounded is the available width passed to a measurer when the width is not
// constrained.
var Unbounded = math.Inf(1)

// TextMeasurer sizes a run of text. maxWidth is the available content width;
// Unbounded or a non-positive value means the text does not wrap.
// Implementations must be deterministic and safe for concurrent use.
type TextMeasurer interface {
	Measure(content string, t style.Text, maxWidth float64) (width, height float64)
}

// Heuristic estimates text size from character counts. Latin characters are
// 0.8em wide and CJK characters 1.2em. Each paragraph wraps into
// ceil(natural/available) lines.
type Heuristic struct{}

func (Heuristic) Measure(content string, t style.Text, maxWidth float64) (float64, float64) {
	if content == "" || t.Size <= 0 {
		return 0, 0
	}
	lineHeight := LineHeight(t)
	bounded := maxWidth > 0 && !math.IsInf(maxWidth, 1)

	var width float64
	lines := 0
	for _, para := range strings.Split(content, "\n") {
		natural := 0.0
		for _, r := range para {
			natural += charWidth(r, t.Size)
		}
		n := 1
		if bounded && natural > maxWidth {
			n = int(math.Ceil(natural / maxWidth))
			natural = maxWidth
		}
		width = max(width, natural)
		lines += n
	}
	return width, float64(lines) * lineHeight
}

// LineHeight returns the height of one line of t in px.
func LineHeight(t style.Text) float64 {
	lh := t.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return t.Size * lh
}

func charWidth(r rune, size float64) float64 {
	if isWide(r) {
		return size * 1.2
	}
	return size * 0.8
}

func isWide(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
