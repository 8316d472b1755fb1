package sink

import (
	"bytes"
	"image"
	"image/color"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/style"
)

// Page is one rendered slide.
type Page struct {
	Index        int                  `json:"index"`
	Title        string               `json:"title,omitempty"`
	Width        float64              `json:"width"`
	Height       float64              `json:"height"`
	Instructions []render.Instruction `json:"instructions"`
	Diagnostics  diag.List            `json:"diagnostics,omitempty"`
}

// DefaultGap separates stacked slides in previews, in px.
const DefaultGap = 24.0

// stack returns the preview canvas size and the top offset of every page.
func stack(pages []Page, gap float64) (width, height float64, tops []float64) {
	tops = make([]float64, len(pages))
	for i, p := range pages {
		if i > 0 {
			height += gap
		}
		tops[i] = height
		height += p.Height
		width = max(width, p.Width)
	}
	return width, height, tops
}

// nrgba converts c with an extra opacity factor. Malformed colors paint black.
func nrgba(c style.Color, opacity float64) color.NRGBA {
	r, g, b, a, ok := c.RGBA()
	if !ok {
		r, g, b, a = 0, 0, 0, 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(a*opacity)*255 + 0.5)}
}

func clamp01(f float64) float64 {
	return min(1, max(0, f))
}

// mimeOf returns the media type of encoded image bytes, or "" when no
// registered decoder recognizes them.
func mimeOf(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return "image/" + format
}
