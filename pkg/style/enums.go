package style

import (
	"strings"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
)

// Direction is the main axis of a flex container.
type Direction int

const (
	Column Direction = iota
	Row
)

func (d Direction) String() string {
	if d == Row {
		return "row"
	}
	return "column"
}

// Justify is the main-axis distribution of a flex container.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

var justifyNames = map[string]Justify{
	"flex-start":    JustifyStart,
	"start":         JustifyStart,
	"center":        JustifyCenter,
	"flex-end":      JustifyEnd,
	"end":           JustifyEnd,
	"space-between": JustifySpaceBetween,
	"space-around":  JustifySpaceAround,
	"space-evenly":  JustifySpaceEvenly,
}

func (j Justify) String() string {
	switch j {
	case JustifyCenter:
		return "center"
	case JustifyEnd:
		return "flex-end"
	case JustifySpaceBetween:
		return "space-between"
	case JustifySpaceAround:
		return "space-around"
	case JustifySpaceEvenly:
		return "space-evenly"
	default:
		return "flex-start"
	}
}

// Align is the cross-axis alignment of flex items.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
	// AlignAuto is only meaningful for alignSelf and defers to the parent.
	AlignAuto
)

var alignNames = map[string]Align{
	"flex-start": AlignStart,
	"start":      AlignStart,
	"center":     AlignCenter,
	"flex-end":   AlignEnd,
	"end":        AlignEnd,
	"stretch":    AlignStretch,
	"auto":       AlignAuto,
}

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "flex-end"
	case AlignStretch:
		return "stretch"
	case AlignAuto:
		return "auto"
	default:
		return "flex-start"
	}
}

// TextAlign is the horizontal alignment of a text run.
type TextAlign string

const (
	TextLeft    TextAlign = "left"
	TextCenter  TextAlign = "center"
	TextRight   TextAlign = "right"
	TextJustify TextAlign = "justify"
)

// BorderStyle is the stroke pattern of a border.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// DashArray returns the stroke dash pattern for a border of the given width:
// width*3,width*2 for dashed, width,width for dotted and nil for solid.
func (s BorderStyle) DashArray(width float64) []float64 {
	switch s {
	case BorderDashed:
		return []float64{width * 3, width * 2}
	case BorderDotted:
		return []float64{width, width}
	}
	return nil
}

// Fit is how an image fills its box.
type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
	FitCrop    Fit = "crop"
	FitNone    Fit = "none"
)

func unknownValue(property string, raw any, fallback string) *diag.Diagnostic {
	d := diag.New(errors.ErrCodeUnknownValue, property,
		"unsupported value %s for %s; using %s", describe(raw), property, fallback)
	return &d
}

func keyword(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}

// ParseDirection resolves flexDirection. Unknown values fall back to column.
func ParseDirection(raw any, property string) (Direction, *diag.Diagnostic) {
	s, _ := keyword(raw)
	switch s {
	case "row":
		return Row, nil
	case "column":
		return Column, nil
	}
	return Column, unknownValue(property, raw, "column")
}

// ParseJustify resolves justifyContent. Unknown values fall back to flex-start.
func ParseJustify(raw any, property string) (Justify, *diag.Diagnostic) {
	s, _ := keyword(raw)
	if j, ok := justifyNames[s]; ok {
		return j, nil
	}
	return JustifyStart, unknownValue(property, raw, "flex-start")
}

// ParseAlign resolves alignItems or alignSelf. Auto is only accepted when
// allowAuto is set; other unknown values fall back to fallback.
func ParseAlign(raw any, property string, allowAuto bool, fallback Align) (Align, *diag.Diagnostic) {
	s, _ := keyword(raw)
	if a, ok := alignNames[s]; ok && (a != AlignAuto || allowAuto) {
		return a, nil
	}
	return fallback, unknownValue(property, raw, fallback.String())
}

// ParseTextAlign resolves textAlign. Unknown values fall back to left.
func ParseTextAlign(raw any, property string) (TextAlign, *diag.Diagnostic) {
	s, _ := keyword(raw)
	switch TextAlign(s) {
	case TextLeft, TextCenter, TextRight, TextJustify:
		return TextAlign(s), nil
	case "start":
		return TextLeft, nil
	case "end":
		return TextRight, nil
	}
	return TextLeft, unknownValue(property, raw, string(TextLeft))
}

// ParseBorderStyle resolves borderStyle. Unknown values fall back to solid.
func ParseBorderStyle(raw any, property string) (BorderStyle, *diag.Diagnostic) {
	s, _ := keyword(raw)
	switch BorderStyle(s) {
	case BorderSolid, BorderDashed, BorderDotted:
		return BorderStyle(s), nil
	}
	return BorderSolid, unknownValue(property, raw, string(BorderSolid))
}

// ParseFit resolves objectFit or backgroundSize. "fit" is the deck spelling of
// crop.
func ParseFit(raw any, property string, fallback Fit) (Fit, *diag.Diagnostic) {
	s, _ := keyword(raw)
	switch s {
	case "cover":
		return FitCover, nil
	case "contain":
		return FitContain, nil
	case "fit", "crop", "fill":
		return FitCrop, nil
	case "none":
		return FitNone, nil
	}
	return fallback, unknownValue(property, raw, string(fallback))
}
