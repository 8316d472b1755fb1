package style

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
)

// Color is a canonical color: "#rrggbb" in lowercase, or rgb()/rgba()
// functional notation with whitespace removed. The empty Color means unset.
type Color string

// DefaultColor is the fallback for unrecognized colors.
const DefaultColor Color = "#000000"

// Transparent is the canonical form of the "transparent" keyword.
const Transparent Color = "rgba(0,0,0,0)"

// IsSet reports whether the color was specified.
func (c Color) IsSet() bool { return c != "" }

// IsVisible reports whether the color is set and not fully transparent.
func (c Color) IsVisible() bool {
	if !c.IsSet() {
		return false
	}
	_, _, _, a, ok := c.RGBA()
	return !ok || a > 0
}

var hexDigits = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// ResolveColor canonicalizes raw. It accepts 3 and 6 digit hex with or without
// a leading '#', rgb()/rgba() notation, hsl()/hsla() converted to hex or
// rgba(), and the CSS named colors. Anything else
// yields [DefaultColor] and an UNSUPPORTED_COLOR diagnostic.
func ResolveColor(raw any, property string) (Color, *diag.Diagnostic) {
	s, ok := raw.(string)
	if !ok {
		d := diag.New(errors.ErrCodeUnsupportedColor, property,
			"expected a color string for %s, got %s; using %s", property, describe(raw), DefaultColor)
		return DefaultColor, &d
	}
	if c, ok := parseColor(s); ok {
		return c, nil
	}
	d := diag.New(errors.ErrCodeUnsupportedColor, property,
		"unsupported color %q for %s; using %s", s, property, DefaultColor)
	return DefaultColor, &d
}

func parseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)

	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return parseFunctional(s)
	}
	if strings.HasPrefix(lower, "hsl(") || strings.HasPrefix(lower, "hsla(") {
		return parseHSL(lower)
	}

	if lower == "transparent" {
		return Transparent, true
	}
	if rgba, ok := colornames.Map[lower]; ok {
		return Color(fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)), true
	}

	hex := strings.TrimPrefix(s, "#")
	if !hexDigits.MatchString(hex) {
		return "", false
	}
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return "", false
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return "", false
	}
	return Color(c.Hex()), true
}

// parseFunctional keeps rgb()/rgba() verbatim apart from whitespace, after
// checking that it carries 3 or 4 numeric arguments.
func parseFunctional(s string) (Color, bool) {
	compact := strings.Join(strings.Fields(s), "")
	open := strings.IndexByte(compact, '(')
	if open < 0 || !strings.HasSuffix(compact, ")") {
		return "", false
	}
	args := strings.Split(compact[open+1:len(compact)-1], ",")
	if len(args) != 3 && len(args) != 4 {
		return "", false
	}
	for _, a := range args {
		if _, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64); err != nil {
			return "", false
		}
	}
	return Color(compact), true
}

// parseHSL converts hsl(h, s%, l%) and hsla(h, s%, l%, a). The hue is in
// degrees.
func parseHSL(s string) (Color, bool) {
	compact := strings.Join(strings.Fields(s), "")
	open := strings.IndexByte(compact, '(')
	if open < 0 || !strings.HasSuffix(compact, ")") {
		return "", false
	}
	args := strings.Split(compact[open+1:len(compact)-1], ",")
	if len(args) != 3 && len(args) != 4 {
		return "", false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return "", false
	}
	var sl [2]float64
	for i, a := range args[1:3] {
		if !strings.HasSuffix(a, "%") {
			return "", false
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return "", false
		}
		sl[i] = clamp01(v / 100)
	}
	alpha := 1.0
	if len(args) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSuffix(args[3], "%"), 64)
		if err != nil {
			return "", false
		}
		if strings.HasSuffix(args[3], "%") {
			a /= 100
		}
		alpha = clamp01(a)
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, sl[0], sl[1]).Clamped()
	if alpha < 1 {
		r, g, b := c.RGB255()
		return Color(fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))), true
	}
	return Color(c.Hex()), true
}

// RGBA decodes c into 8-bit channels and an alpha in [0,1]. It reports false
// for unset or malformed colors.
func (c Color) RGBA() (r, g, b uint8, a float64, ok bool) {
	s := string(c)
	if strings.HasPrefix(s, "#") {
		col, err := colorful.Hex(s)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		r, g, b = col.RGB255()
		return r, g, b, 1, true
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return 0, 0, 0, 0, false
	}
	args := strings.Split(s[open+1:len(s)-1], ",")
	if len(args) < 3 {
		return 0, 0, 0, 0, false
	}
	ch := [3]uint8{}
	for i := 0; i < 3; i++ {
		v, err := channel(args[i])
		if err != nil {
			return 0, 0, 0, 0, false
		}
		ch[i] = v
	}
	a = 1
	if len(args) == 4 {
		f, err := strconv.ParseFloat(strings.TrimSuffix(args[3], "%"), 64)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		if strings.HasSuffix(args[3], "%") {
			f /= 100
		}
		a = clamp01(f)
	}
	return ch[0], ch[1], ch[2], a, true
}

func channel(s string) (uint8, error) {
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if pct {
		f = f * 255 / 100
	}
	if f < 0 {
		f = 0
	}
	if f > 255 {
		f = 255
	}
	return uint8(f + 0.5), nil
}

// Hex returns the "#rrggbb" part of c, dropping alpha. Unset or malformed
// colors return [DefaultColor].
func (c Color) Hex() string {
	r, g, b, _, ok := c.RGBA()
	if !ok {
		return string(DefaultColor)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Alpha returns the alpha channel of c, 1 for opaque or malformed colors.
func (c Color) Alpha() float64 {
	_, _, _, a, ok := c.RGBA()
	if !ok {
		return 1
	}
	return a
}

// Blend mixes c toward other by t in [0,1] in RGB space. Alpha is
// dropped.
func (c Color) Blend(other Color, t float64) Color {
	a, errA := colorful.Hex(c.Hex())
	b, errB := colorful.Hex(other.Hex())
	if errA != nil || errB != nil {
		return c
	}
	return Color(a.BlendRgb(b, clamp01(t)).Clamped().Hex())
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
