package style

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
)

// DefaultRootFontSize is the rem base in px.
const DefaultRootFontSize = 16.0

// pxPerPt converts typographic points to CSS pixels.
const pxPerPt = 96.0 / 72.0

// unitless lists the properties that accept bare numbers. Any other property
// given a bare number gets a pixel fallback and a diagnostic.
var unitless = map[string]bool{
	"flexGrow":   true,
	"flexShrink": true,
	"flex":       true,
	"zIndex":     true,
	"opacity":    true,
	"order":      true,
	"lineHeight": true,
}

// IsUnitless reports whether property accepts bare numbers.
func IsUnitless(property string) bool {
	return unitless[property]
}

// spacingProperties default to 0 instead of auto when unset or invalid.
func isSpacing(property string) bool {
	switch {
	case strings.HasPrefix(property, "margin"), strings.HasPrefix(property, "padding"):
		return true
	case property == "gap", property == "borderWidth", property == "borderRadius":
		return true
	}
	return false
}

// propertyDefault is the documented fallback for a length property.
func propertyDefault(property string) Length {
	if isSpacing(property) {
		return Px(0)
	}
	return Auto
}

var lengthRe = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*(px|%|vw|vh|em|rem|pt)?$`)

// Resolver resolves raw values for one slide. A zero Resolver is usable: vw
// and vh stay unresolved and em/rem use [DefaultRootFontSize].
type Resolver struct {
	Viewport     Viewport
	RootFontSize float64

	// emBase is the font size em values refer to. Zero means RootFontSize.
	emBase   float64
	defaults TextDefaults
}

// NewResolver returns a resolver for a slide of the given size.
func NewResolver(width, height float64) *Resolver {
	return &Resolver{
		Viewport:     Viewport{Width: width, Height: height},
		RootFontSize: DefaultRootFontSize,
	}
}

// WithEmBase returns a copy of r whose em unit is base pixels.
func (r *Resolver) WithEmBase(base float64) *Resolver {
	c := *r
	c.emBase = base
	return &c
}

func (r *Resolver) rootFont() float64 {
	if r == nil || r.RootFontSize <= 0 {
		return DefaultRootFontSize
	}
	return r.RootFontSize
}

func (r *Resolver) em() float64 {
	if r != nil && r.emBase > 0 {
		return r.emBase
	}
	return r.rootFont()
}

var defaultResolver = &Resolver{RootFontSize: DefaultRootFontSize}

// Resolve resolves a raw length value with a viewport-less resolver. It is
// the package-level form of [Resolver.Length].
func Resolve(raw any, property string, axis Axis, ancestor Ancestor) (Length, *diag.Diagnostic) {
	return defaultResolver.Length(raw, property, axis, ancestor)
}

// Length resolves raw for property.
//
// Accepted inputs are numbers, strings with px, %, vw, vh, em, rem or pt
// units, and the keywords auto, inherit, initial and unset. A bare number for
// a property outside the unitless allow-list is taken as pixels and reported.
// Percentages resolve against ancestor when it is known and stay percentages
// otherwise. The returned diagnostic is nil when the input conformed.
func (r *Resolver) Length(raw any, property string, axis Axis, ancestor Ancestor) (Length, *diag.Diagnostic) {
	if r == nil {
		r = defaultResolver
	}
	fallback := propertyDefault(property)

	switch v := raw.(type) {
	case nil:
		return fallback, nil
	case Length:
		return r.finish(v, ancestor), nil
	case float64:
		return r.bareNumber(v, property)
	case float32:
		return r.bareNumber(float64(v), property)
	case int:
		return r.bareNumber(float64(v), property)
	case int64:
		return r.bareNumber(float64(v), property)
	case string:
		return r.lengthString(v, property, ancestor, fallback)
	default:
		d := diag.New(errors.ErrCodeMalformedUnit, property,
			"expected a length for %s on the %s axis, got %T; using %s", property, axis, raw, fallback)
		return fallback, &d
	}
}

func (r *Resolver) bareNumber(v float64, property string) (Length, *diag.Diagnostic) {
	if unitless[property] {
		return Px(v), nil
	}
	d := diag.New(errors.ErrCodeMalformedUnit, property,
		"unitless value %s for %s; treating as %spx", formatNum(v), property, formatNum(v))
	return Px(v), &d
}

func (r *Resolver) lengthString(s, property string, ancestor Ancestor, fallback Length) (Length, *diag.Diagnostic) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "auto":
		return Auto, nil
	case "inherit", "initial", "unset":
		return fallback, nil
	case "":
		d := diag.New(errors.ErrCodeMalformedUnit, property, "empty value for %s; using %s", property, fallback)
		return fallback, &d
	}

	m := lengthRe.FindStringSubmatch(s)
	if m == nil {
		d := diag.New(errors.ErrCodeMalformedUnit, property, "cannot parse %q for %s; using %s", s, property, fallback)
		return fallback, &d
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		d := diag.New(errors.ErrCodeMalformedUnit, property, "cannot parse %q for %s; using %s", s, property, fallback)
		return fallback, &d
	}

	var l Length
	switch m[2] {
	case "":
		return r.bareNumber(num, property)
	case "px":
		l = Px(num)
	case "pt":
		l = Px(num * pxPerPt)
	case "em":
		l = Px(num * r.em())
	case "rem":
		l = Px(num * r.rootFont())
	case "%":
		l = Percent(num)
	case "vw":
		l = VW(num)
	case "vh":
		l = VH(num)
	}
	return r.finish(l, ancestor), nil
}

func (r *Resolver) finish(l Length, ancestor Ancestor) Length {
	return l.Against(ancestor, r.Viewport)
}

// Number resolves a unitless numeric property such as flexGrow or opacity.
// Strings holding a number are accepted. Anything else yields fallback and a
// diagnostic.
func (r *Resolver) Number(raw any, property string, fallback float64) (float64, *diag.Diagnostic) {
	switch v := raw.(type) {
	case nil:
		return fallback, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, nil
		}
	}
	d := diag.New(errors.ErrCodeMalformedUnit, property,
		"expected a number for %s, got %v; using %s", property, raw, formatNum(fallback))
	return fallback, &d
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// describe renders a raw value for messages.
func describe(raw any) string {
	if s, ok := raw.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", raw)
}
