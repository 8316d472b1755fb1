// Package style turns raw, unit-ambiguous style values into resolved lengths,
// colors and enums.
//
// Resolution never fails as a whole. Each property that cannot be understood
// yields a documented fallback and one diagnostic, and the rest of the style
// is still processed.
//
// Percentages are only resolved when the ancestor size on the matching axis is
// known. Otherwise the [Length] keeps its percent unit and package layout
// resolves it once the parent box has been computed.
package style

import (
	"fmt"
	"math"
	"strconv"
)

// Unit tags a [Length].
type Unit int

const (
	UnitAuto Unit = iota
	UnitPx
	UnitPercent
	UnitVW
	UnitVH
)

func (u Unit) String() string {
	switch u {
	case UnitPx:
		return "px"
	case UnitPercent:
		return "%"
	case UnitVW:
		return "vw"
	case UnitVH:
		return "vh"
	default:
		return "auto"
	}
}

// Length is a unit-disambiguated dimension.
type Length struct {
	Value float64
	Unit  Unit
}

// Auto is the auto length.
var Auto = Length{Unit: UnitAuto}

// Px returns a pixel length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPx} }

// Percent returns a percentage of the ancestor size.
func Percent(v float64) Length { return Length{Value: v, Unit: UnitPercent} }

// VW returns a percentage of the viewport width.
func VW(v float64) Length { return Length{Value: v, Unit: UnitVW} }

// VH returns a percentage of the viewport height.
func VH(v float64) Length { return Length{Value: v, Unit: UnitVH} }

func (l Length) IsAuto() bool    { return l.Unit == UnitAuto }
func (l Length) IsPx() bool      { return l.Unit == UnitPx }
func (l Length) IsPercent() bool { return l.Unit == UnitPercent }

// IsDefinite reports whether the length resolves without an ancestor size.
func (l Length) IsDefinite() bool {
	return l.Unit == UnitPx || l.Unit == UnitVW || l.Unit == UnitVH
}

func (l Length) String() string {
	if l.Unit == UnitAuto {
		return "auto"
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// MarshalText implements encoding.TextMarshaler so lengths read naturally in
// JSON dumps of resolved styles.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Axis selects the ancestor dimension a percentage refers to.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Ancestor is the resolved size of the ancestor on one axis, or unknown when
// the ancestor is still waiting for its content size.
type Ancestor struct {
	Size  float64
	Known bool
}

// Known returns an ancestor of the given size.
func Known(size float64) Ancestor { return Ancestor{Size: size, Known: true} }

// Unknown is an ancestor whose size is not available yet.
var Unknown = Ancestor{}

// Viewport is the slide size used by vw and vh.
type Viewport struct {
	Width, Height float64
}

// Against resolves percentages and viewport units where possible. Auto and
// unresolvable percentages are returned unchanged.
func (l Length) Against(anc Ancestor, vp Viewport) Length {
	switch l.Unit {
	case UnitPercent:
		if anc.Known {
			return Px(anc.Size * l.Value / 100)
		}
	case UnitVW:
		if vp.Width > 0 {
			return Px(vp.Width * l.Value / 100)
		}
	case UnitVH:
		if vp.Height > 0 {
			return Px(vp.Height * l.Value / 100)
		}
	}
	return l
}

// ToPx resolves l to pixels. It reports false for auto and for lengths that
// need an unknown ancestor or viewport.
func (l Length) ToPx(anc Ancestor, vp Viewport) (float64, bool) {
	r := l.Against(anc, vp)
	if r.Unit != UnitPx {
		return 0, false
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return 0, false
	}
	return r.Value, true
}

// PxOr resolves l to pixels, returning fallback when it cannot.
func (l Length) PxOr(anc Ancestor, vp Viewport, fallback float64) float64 {
	if v, ok := l.ToPx(anc, vp); ok {
		return v
	}
	return fallback
}

// Edges holds four per-side lengths.
type Edges struct {
	Top, Right, Bottom, Left Length
}

// UniformEdges returns edges with all sides set to l.
func UniformEdges(l Length) Edges {
	return Edges{Top: l, Right: l, Bottom: l, Left: l}
}

// EdgesPx are resolved per-side pixel values.
type EdgesPx struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Horizontal returns Left + Right.
func (e EdgesPx) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e EdgesPx) Vertical() float64 { return e.Top + e.Bottom }

// Resolve converts edges to pixels. Horizontal sides resolve against width and
// vertical sides against height; unresolvable sides become 0 and are reported
// through the returned count.
func (e Edges) Resolve(width, height Ancestor, vp Viewport) (EdgesPx, int) {
	unresolved := 0
	side := func(l Length, anc Ancestor) float64 {
		if l.IsAuto() {
			return 0
		}
		v, ok := l.ToPx(anc, vp)
		if !ok {
			unresolved++
			return 0
		}
		return v
	}
	return EdgesPx{
		Top:    side(e.Top, height),
		Right:  side(e.Right, width),
		Bottom: side(e.Bottom, height),
		Left:   side(e.Left, width),
	}, unresolved
}

func (e Edges) String() string {
	return fmt.Sprintf("%s %s %s %s", e.Top, e.Right, e.Bottom, e.Left)
}
