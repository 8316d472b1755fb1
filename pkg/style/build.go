package style

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// TextDefaults are deck-wide typography fallbacks.
type TextDefaults struct {
	Size   float64
	Family string
	Color  Color
}

// WithDefaults returns a copy of r that applies the deck defaults to text
// elements, along with diagnostics for malformed default values.
func (r *Resolver) WithDefaults(d slide.Defaults) (*Resolver, diag.List) {
	c := *r
	var diags diag.List
	if d.FontSize != "" {
		l, dg := c.Length(d.FontSize, "fontSize", Vertical, Known(c.rootFont()))
		if dg != nil {
			dg.Property = "defaults.fontSize"
			diags.Add(*dg)
		}
		if v, ok := l.ToPx(Unknown, c.Viewport); ok && v > 0 {
			c.defaults.Size = v
		}
	}
	if d.Color != "" {
		col, dg := ResolveColor(d.Color, "defaults.color")
		if dg != nil {
			diags.Add(*dg)
		}
		c.defaults.Color = col
	}
	c.defaults.Family = d.FontFamily
	return &c, diags
}

// properties lists every style property the resolver understands. The value
// is unused; the map doubles as a set.
var properties = map[string]struct{}{
	"width": {}, "height": {}, "minWidth": {}, "minHeight": {}, "maxWidth": {}, "maxHeight": {},
	"margin": {}, "marginTop": {}, "marginRight": {}, "marginBottom": {}, "marginLeft": {},
	"padding": {}, "paddingTop": {}, "paddingRight": {}, "paddingBottom": {}, "paddingLeft": {},
	"gap": {},
	"flex": {}, "flexDirection": {}, "direction": {}, "flexGrow": {}, "flexShrink": {}, "flexBasis": {},
	"flexWrap": {}, "justifyContent": {}, "alignItems": {}, "alignSelf": {},
	"background": {}, "backgroundColor": {}, "backgroundImage": {}, "backgroundSize": {},
	"borderColor": {}, "borderWidth": {}, "borderRadius": {}, "borderStyle": {},
	"opacity": {}, "shadow": {}, "boxShadow": {}, "glow": {}, "reflection": {},
	"glassEffect": {}, "backdropFilter": {},
	"objectFit": {},
	"color": {}, "fontSize": {}, "fontFamily": {}, "fontWeight": {}, "fontStyle": {},
	"textAlign": {}, "lineHeight": {}, "textShadow": {},
	"zIndex": {}, "order": {},
}

// IsKnownProperty reports whether name is a supported style property.
func IsKnownProperty(name string) bool {
	_, ok := properties[name]
	return ok
}

type builder struct {
	r     *Resolver
	s     ResolvedStyle
	diags diag.List
}

func (b *builder) report(d *diag.Diagnostic) {
	if d != nil {
		b.diags.Add(*d)
	}
}

func (b *builder) length(raw any, property string, axis Axis) Length {
	l, d := b.r.Length(raw, property, axis, Unknown)
	b.report(d)
	return l
}

func (b *builder) number(raw any, property string, fallback float64) float64 {
	v, d := b.r.Number(raw, property, fallback)
	b.report(d)
	return v
}

func (b *builder) color(raw any, property string) Color {
	c, d := ResolveColor(raw, property)
	b.report(d)
	return c
}

// Style resolves the style of el. Properties are processed in lexical order,
// which puts shorthands (margin, padding, flex, background) before the
// longhands that refine them.
func (r *Resolver) Style(el *slide.Element) (ResolvedStyle, diag.List) {
	if r == nil {
		r = defaultResolver
	}
	b := &builder{r: r, s: Default()}
	b.s.Text = r.textDefaults(el)

	// Font size comes first: em lengths refer to it.
	raw, explicit := el.Style["fontSize"]
	if explicit {
		l, d := r.Length(raw, "fontSize", Vertical, Known(b.s.Text.Size))
		b.report(d)
		if v, ok := l.ToPx(Known(b.s.Text.Size), r.Viewport); ok && v > 0 {
			b.s.Text.Size = v
		}
	}
	if explicit || el.Kind.IsText() {
		b.r = r.WithEmBase(b.s.Text.Size)
	}

	keys := make([]string, 0, len(el.Style))
	for k := range el.Style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.apply(k, el.Style[k])
	}
	return b.s, b.diags
}

func (r *Resolver) textDefaults(el *slide.Element) Text {
	t := Text{
		Size:  slide.DefaultFontSize,
		Color: DefaultColor,
		Align: TextLeft,
	}
	if r.defaults.Size > 0 {
		t.Size = r.defaults.Size
	}
	if r.defaults.Color.IsSet() {
		t.Color = r.defaults.Color
	}
	t.Family = r.defaults.Family
	if el.Kind == slide.KindHeading {
		t.Size = slide.HeadingFontSize(el.Level)
		t.Bold = true
	}
	return t
}

var blurRe = regexp.MustCompile(`^blur\(\s*([^)]*)\)$`)

func (b *builder) apply(k string, raw any) {
	s := &b.s
	switch k {
	case "fontSize":
		// handled before the loop

	case "width":
		s.Width = b.length(raw, k, Horizontal)
	case "height":
		s.Height = b.length(raw, k, Vertical)
	case "minWidth":
		s.MinWidth = b.length(raw, k, Horizontal)
	case "minHeight":
		s.MinHeight = b.length(raw, k, Vertical)
	case "maxWidth":
		s.MaxWidth = b.length(raw, k, Horizontal)
	case "maxHeight":
		s.MaxHeight = b.length(raw, k, Vertical)

	case "margin":
		s.Margin = b.edges(raw, k)
	case "marginTop":
		s.Margin.Top = b.length(raw, k, Vertical)
	case "marginRight":
		s.Margin.Right = b.length(raw, k, Horizontal)
	case "marginBottom":
		s.Margin.Bottom = b.length(raw, k, Vertical)
	case "marginLeft":
		s.Margin.Left = b.length(raw, k, Horizontal)
	case "padding":
		s.Padding = b.edges(raw, k)
	case "paddingTop":
		s.Padding.Top = b.length(raw, k, Vertical)
	case "paddingRight":
		s.Padding.Right = b.length(raw, k, Horizontal)
	case "paddingBottom":
		s.Padding.Bottom = b.length(raw, k, Vertical)
	case "paddingLeft":
		s.Padding.Left = b.length(raw, k, Horizontal)
	case "gap":
		s.Gap = b.length(raw, k, Horizontal)

	case "flex":
		// flex: N is grow N, shrink 1, basis 0.
		s.Grow = b.number(raw, k, 0)
		s.Shrink = 1
		s.Basis = Px(0)
	case "flexGrow":
		s.Grow = max(0, b.number(raw, k, 0))
	case "flexShrink":
		s.Shrink = max(0, b.number(raw, k, 1))
	case "flexBasis":
		s.Basis = b.length(raw, k, Horizontal)
	case "direction":
		d := diag.New(errors.ErrCodeDeprecatedProperty, k, "direction is deprecated; use flexDirection")
		b.report(&d)
		dir, dg := ParseDirection(raw, k)
		b.report(dg)
		s.Direction = dir
	case "flexDirection":
		dir, d := ParseDirection(raw, k)
		b.report(d)
		s.Direction = dir
	case "flexWrap":
		if w, _ := keyword(raw); w != "nowrap" {
			b.report(unknownValue(k, raw, "nowrap"))
		}
	case "justifyContent":
		j, d := ParseJustify(raw, k)
		b.report(d)
		s.Justify = j
	case "alignItems":
		a, d := ParseAlign(raw, k, false, AlignStart)
		b.report(d)
		s.AlignItems = a
	case "alignSelf":
		a, d := ParseAlign(raw, k, true, AlignAuto)
		b.report(d)
		s.AlignSelf = a

	case "background":
		b.background(raw, k)
	case "backgroundColor":
		s.Background = b.color(raw, k)
	case "backgroundImage":
		if str, ok := raw.(string); ok {
			s.BackgroundImage = strings.TrimSpace(str)
		} else {
			b.report(unknownValue(k, raw, "none"))
		}
	case "backgroundSize":
		f, d := ParseFit(raw, k, FitCover)
		b.report(d)
		s.BackgroundSize = f
	case "borderColor":
		s.Border.Color = b.color(raw, k)
	case "borderWidth":
		s.Border.Width = b.length(raw, k, Horizontal)
	case "borderRadius":
		s.Border.Radius = b.length(raw, k, Horizontal)
	case "borderStyle":
		st, d := ParseBorderStyle(raw, k)
		b.report(d)
		s.Border.Style = st
	case "opacity":
		s.Opacity = clamp01(b.number(raw, k, 1))
	case "shadow", "boxShadow":
		s.Shadow = b.shadow(raw, k)
	case "textShadow":
		s.Text.Shadow = b.shadow(raw, k)
	case "glow":
		s.Glow = b.glow(raw, k)
	case "reflection":
		if m, ok := raw.(map[string]any); ok {
			s.Reflection = copyMap(m)
		} else if on, ok := raw.(bool); ok && on {
			s.Reflection = map[string]any{}
		}
	case "glassEffect":
		on, ok := raw.(bool)
		if !ok {
			b.report(unknownValue(k, raw, "false"))
		}
		switch {
		case on && s.Glass == nil:
			s.Glass = &Glass{}
		case !on:
			s.Glass = nil
		}
	case "backdropFilter":
		s.Glass = b.backdrop(raw, k)

	case "objectFit":
		f, d := ParseFit(raw, k, FitContain)
		b.report(d)
		s.Fit = f

	case "color":
		s.Text.Color = b.color(raw, k)
	case "fontFamily":
		if str, ok := raw.(string); ok {
			s.Text.Family = strings.TrimSpace(str)
		} else {
			b.report(unknownValue(k, raw, "default family"))
		}
	case "fontWeight":
		s.Text.Bold = b.bold(raw, k)
	case "fontStyle":
		st, _ := keyword(raw)
		switch st {
		case "italic", "oblique":
			s.Text.Italic = true
		case "normal":
			s.Text.Italic = false
		default:
			b.report(unknownValue(k, raw, "normal"))
		}
	case "textAlign":
		a, d := ParseTextAlign(raw, k)
		b.report(d)
		s.Text.Align = a
	case "lineHeight":
		s.Text.LineHeight = b.lineHeight(raw, k)

	case "zIndex":
		s.Z = stackIndex(b.number(raw, k, 0))
	case "order":
		s.Order = stackIndex(b.number(raw, k, 0))

	default:
		d := diag.New(errors.ErrCodeUnknownProperty, k, "unknown style property %q ignored", k)
		b.report(&d)
	}
}

// edges resolves a margin or padding shorthand. Only a single value is
// accepted; multi-value CSS shorthands are reported as malformed.
func (b *builder) edges(raw any, property string) Edges {
	// Percentages stay unresolved here and are resolved per axis by the
	// layout, so a single resolution serves all four sides.
	return UniformEdges(b.length(raw, property, Horizontal))
}

func (b *builder) background(raw any, property string) {
	switch v := raw.(type) {
	case string:
		b.s.Background = b.color(v, property)
	case map[string]any:
		b.s.Gradient = b.gradient(v, property)
	default:
		b.report(unknownValue(property, raw, "none"))
	}
}

func (b *builder) gradient(m map[string]any, property string) *Gradient {
	typ, _ := keyword(m["type"])
	g := &Gradient{}
	switch typ {
	case "lineargradient", "linear":
		g.Type = LinearGradient
		if dir, ok := m["direction"].(string); ok {
			g.Direction = dir
		}
	case "radialgradient", "radial":
		g.Type = RadialGradient
	default:
		b.report(unknownValue(property+".type", m["type"], "none"))
		return nil
	}

	stops, _ := m["stops"].([]any)
	for i, raw := range stops {
		sm, ok := raw.(map[string]any)
		if !ok {
			b.report(unknownValue(property+".stops", raw, "skipped stop"))
			continue
		}
		st := Stop{Color: b.color(sm["color"], property+".stops.color")}
		def := 0.0
		if len(stops) > 1 {
			def = 100 * float64(i) / float64(len(stops)-1)
		}
		st.Offset = b.number(sm["offset"], property+".stops.offset", def)
		if st.Offset < 0 {
			st.Offset = 0
		}
		if st.Offset > 100 {
			st.Offset = 100
		}
		g.Stops = append(g.Stops, st)
	}
	if len(g.Stops) == 0 {
		b.report(unknownValue(property+".stops", m["stops"], "no gradient"))
		return nil
	}
	return g
}

func (b *builder) shadow(raw any, property string) *Shadow {
	m, ok := raw.(map[string]any)
	if !ok {
		if s, isStr := raw.(string); isStr && strings.EqualFold(strings.TrimSpace(s), "none") {
			return nil
		}
		b.report(unknownValue(property, raw, "no shadow"))
		return nil
	}
	sh := &Shadow{Type: "outer", Color: DefaultColor, Opacity: 1}
	if t, _ := keyword(m["type"]); t == "inner" {
		sh.Type = "inner"
	}
	if c, ok := m["color"]; ok {
		sh.Color = b.color(c, property+".color")
	}
	if v, ok := m["blur"]; ok {
		sh.Blur = b.length(v, property+".blur", Horizontal).PxOr(Unknown, b.r.Viewport, 0)
	}
	if v, ok := m["offset"]; ok {
		sh.Offset = b.length(v, property+".offset", Horizontal).PxOr(Unknown, b.r.Viewport, 0)
	}
	if v, ok := m["angle"]; ok {
		sh.Angle = b.number(v, property+".angle", 0)
	}
	if v, ok := m["opacity"]; ok {
		sh.Opacity = clamp01(b.number(v, property+".opacity", 1))
	}
	return sh
}

func (b *builder) glow(raw any, property string) *Glow {
	m, ok := raw.(map[string]any)
	if !ok {
		b.report(unknownValue(property, raw, "no glow"))
		return nil
	}
	g := &Glow{Color: DefaultColor, Opacity: 1}
	if v, ok := m["size"]; ok {
		g.Size = b.length(v, property+".size", Horizontal).PxOr(Unknown, b.r.Viewport, 0)
	}
	if c, ok := m["color"]; ok {
		g.Color = b.color(c, property+".color")
	}
	if v, ok := m["opacity"]; ok {
		g.Opacity = clamp01(b.number(v, property+".opacity", 1))
	}
	return g
}

func (b *builder) backdrop(raw any, property string) *Glass {
	s, _ := keyword(raw)
	if s == "none" || s == "" {
		return nil
	}
	m := blurRe.FindStringSubmatch(s)
	if m == nil {
		b.report(unknownValue(property, raw, "none"))
		return nil
	}
	if strings.TrimSpace(m[1]) == "" {
		return &Glass{}
	}
	l := b.length(m[1], property, Horizontal)
	return &Glass{Blur: l.PxOr(Unknown, b.r.Viewport, 0)}
}

func (b *builder) bold(raw any, property string) bool {
	switch v := raw.(type) {
	case float64:
		return v >= 700
	case string:
		w := strings.ToLower(strings.TrimSpace(v))
		switch w {
		case "bold", "bolder":
			return true
		case "normal", "lighter":
			return false
		}
		if n, err := strconv.ParseFloat(w, 64); err == nil {
			return n >= 700
		}
	}
	b.report(unknownValue(property, raw, "normal"))
	return false
}

// lineHeight returns a multiplier of the font size. Unitless numbers are
// multipliers; lengths are divided by the font size.
func (b *builder) lineHeight(raw any, property string) float64 {
	if n, ok := raw.(float64); ok {
		return max(0, n)
	}
	if str, ok := raw.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return max(0, n)
		}
	}
	l := b.length(raw, property, Vertical)
	if v, ok := l.ToPx(Known(b.s.Text.Size), b.r.Viewport); ok && b.s.Text.Size > 0 {
		return max(0, v/b.s.Text.Size)
	}
	return 0
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MaxStackIndex bounds zIndex and order so that differences of two values
// never overflow an int.
const MaxStackIndex = 1 << 28

func stackIndex(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(max(-MaxStackIndex, min(MaxStackIndex, f)))
}
