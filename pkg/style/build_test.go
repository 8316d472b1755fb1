package style

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/slide"
)

func TestStyleBoxProperties(t *testing.T) {
	r := NewResolver(960, 540)
	el := &slide.Element{Kind: slide.KindContainer, Style: slide.Style{
		"width":         "50%",
		"height":        "10vh",
		"padding":       "8px",
		"paddingTop":    "2px",
		"margin":        16.0,
		"flex":          2.0,
		"flexDirection": "row",
		"gap":           "1rem",
	}}
	got, diags := r.Style(el)

	if got.Width != Percent(50) {
		t.Errorf("Width = %v, want 50%%", got.Width)
	}
	if got.Height != Px(54) {
		t.Errorf("Height = %v, want 54px", got.Height)
	}
	wantPad := Edges{Top: Px(2), Right: Px(8), Bottom: Px(8), Left: Px(8)}
	if got.Padding != wantPad {
		t.Errorf("Padding = %v, want %v", got.Padding, wantPad)
	}
	if got.Margin != UniformEdges(Px(16)) {
		t.Errorf("Margin = %v, want 16px", got.Margin)
	}
	if got.Grow != 2 || got.Shrink != 1 || got.Basis != Px(0) {
		t.Errorf("flex = grow %v shrink %v basis %v", got.Grow, got.Shrink, got.Basis)
	}
	if got.Direction != Row {
		t.Errorf("Direction = %v, want row", got.Direction)
	}
	if got.Gap != Px(16) {
		t.Errorf("Gap = %v, want 16px", got.Gap)
	}
	if n := diags.Count(errors.ErrCodeMalformedUnit); n != 1 || len(diags) != 1 {
		t.Errorf("diagnostics = %v, want exactly one MALFORMED_UNIT", diags)
	}
}

func TestStyleDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		style slide.Style
		want  errors.Code
	}{
		{"unknown property", slide.Style{"wobble": "yes"}, errors.ErrCodeUnknownProperty},
		{"deprecated direction", slide.Style{"direction": "row"}, errors.ErrCodeDeprecatedProperty},
		{"unknown direction", slide.Style{"flexDirection": "diagonal"}, errors.ErrCodeUnknownValue},
		{"wrap unsupported", slide.Style{"flexWrap": "wrap"}, errors.ErrCodeUnknownValue},
		{"bad color", slide.Style{"backgroundColor": "chartreuseish"}, errors.ErrCodeUnsupportedColor},
		{"bad backdrop", slide.Style{"backdropFilter": "sepia(1)"}, errors.ErrCodeUnknownValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := NewResolver(960, 540).Style(&slide.Element{Kind: slide.KindContainer, Style: tt.style})
			if !diags.Has(tt.want) {
				t.Errorf("diagnostics %v missing %s", diags, tt.want)
			}
		})
	}
}

func TestStyleDeprecatedDirectionHonored(t *testing.T) {
	got, _ := NewResolver(960, 540).Style(&slide.Element{Kind: slide.KindContainer, Style: slide.Style{"direction": "row"}})
	if got.Direction != Row {
		t.Errorf("Direction = %v, want row", got.Direction)
	}
}

func TestStyleText(t *testing.T) {
	r, diags := NewResolver(960, 540).WithDefaults(slide.Defaults{FontSize: "18px", Color: "#333", FontFamily: "Inter"})
	if len(diags) != 0 {
		t.Fatalf("defaults diagnostics: %v", diags)
	}

	text, _ := r.Style(&slide.Element{Kind: slide.KindText, Style: slide.Style{"padding": "1em"}})
	if text.Text.Size != 18 || text.Text.Color != "#333333" || text.Text.Family != "Inter" || text.Text.Bold {
		t.Errorf("text defaults = %+v", text.Text)
	}
	if text.Padding.Top != Px(18) {
		t.Errorf("1em padding at 18px = %v", text.Padding.Top)
	}

	heading, _ := r.Style(&slide.Element{Kind: slide.KindHeading, Level: 2})
	if heading.Text.Size != 20 || !heading.Text.Bold {
		t.Errorf("heading = size %v bold %v, want 20 and bold", heading.Text.Size, heading.Text.Bold)
	}

	styled, diags := r.Style(&slide.Element{Kind: slide.KindText, Style: slide.Style{
		"fontSize":   "150%",
		"fontWeight": "700",
		"fontStyle":  "italic",
		"textAlign":  "center",
		"lineHeight": 1.2,
		"color":      "white",
	}})
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	want := Text{Size: 27, Family: "Inter", Bold: true, Italic: true, Color: "#ffffff", Align: TextCenter, LineHeight: 1.2}
	if diff := cmp.Diff(want, styled.Text); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestStyleVisual(t *testing.T) {
	el := &slide.Element{Kind: slide.KindFrame, Style: slide.Style{
		"backgroundColor": "#1E40AF",
		"borderRadius":    "16px",
		"borderWidth":     "2px",
		"borderColor":     "red",
		"borderStyle":     "dashed",
		"backdropFilter":  "blur(8px)",
		"opacity":         1.5,
		"shadow":          map[string]any{"type": "outer", "color": "#000", "blur": "6px", "offset": "2px", "angle": 45.0, "opacity": 0.4},
		"glow":            map[string]any{"size": "4px", "color": "#ffcc00"},
		"background": map[string]any{
			"type":      "linearGradient",
			"direction": "to right",
			"stops": []any{
				map[string]any{"color": "#ff0000"},
				map[string]any{"color": "#0000ff"},
			},
		},
	}}
	got, diags := NewResolver(960, 540).Style(el)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got.Background != "#1e40af" {
		t.Errorf("Background = %s", got.Background)
	}
	wantBorder := Border{Color: "#ff0000", Width: Px(2), Radius: Px(16), Style: BorderDashed}
	if got.Border != wantBorder {
		t.Errorf("Border = %+v, want %+v", got.Border, wantBorder)
	}
	if got.Glass == nil || got.Glass.Blur != 8 {
		t.Errorf("Glass = %+v, want blur 8", got.Glass)
	}
	if got.Opacity != 1 {
		t.Errorf("Opacity = %v, want clamped 1", got.Opacity)
	}
	wantShadow := &Shadow{Type: "outer", Color: "#000000", Blur: 6, Offset: 2, Angle: 45, Opacity: 0.4}
	if diff := cmp.Diff(wantShadow, got.Shadow); diff != "" {
		t.Errorf("shadow mismatch (-want +got):\n%s", diff)
	}
	if got.Glow == nil || got.Glow.Size != 4 || got.Glow.Color != "#ffcc00" {
		t.Errorf("Glow = %+v", got.Glow)
	}
	wantGrad := &Gradient{Type: LinearGradient, Direction: "to right", Stops: []Stop{
		{Color: "#ff0000", Offset: 0},
		{Color: "#0000ff", Offset: 100},
	}}
	if diff := cmp.Diff(wantGrad, got.Gradient); diff != "" {
		t.Errorf("gradient mismatch (-want +got):\n%s", diff)
	}
	if !got.HasVisual() {
		t.Error("HasVisual = false")
	}
}

func TestStyleGlassToggle(t *testing.T) {
	tests := []struct {
		style slide.Style
		want  *Glass
	}{
		{slide.Style{"glassEffect": true}, &Glass{}},
		{slide.Style{"glassEffect": true, "backdropFilter": "blur(12px)"}, &Glass{Blur: 12}},
		{slide.Style{"glassEffect": false, "backdropFilter": "blur(12px)"}, nil},
		{slide.Style{"backdropFilter": "none"}, nil},
		{slide.Style{}, nil},
	}
	for _, tt := range tests {
		got, _ := NewResolver(960, 540).Style(&slide.Element{Kind: slide.KindFrame, Style: tt.style})
		if diff := cmp.Diff(tt.want, got.Glass); diff != "" {
			t.Errorf("%v: glass mismatch (-want +got):\n%s", tt.style, diff)
		}
	}
}

func TestStyleImageFit(t *testing.T) {
	tests := []struct {
		value string
		want  Fit
	}{
		{"cover", FitCover},
		{"contain", FitContain},
		{"fit", FitCrop},
		{"none", FitNone},
	}
	for _, tt := range tests {
		got, _ := NewResolver(960, 540).Style(&slide.Element{Kind: slide.KindImage, Style: slide.Style{"objectFit": tt.value}})
		if got.Fit != tt.want {
			t.Errorf("objectFit %s = %s, want %s", tt.value, got.Fit, tt.want)
		}
	}

	got, _ := NewResolver(960, 540).Style(&slide.Element{Kind: slide.KindImage})
	if got.Fit != FitContain {
		t.Errorf("default fit = %s, want contain", got.Fit)
	}
}

func TestGradientVector(t *testing.T) {
	tests := []struct {
		dir            string
		x1, y1, x2, y2 float64
	}{
		{"", 0, 0, 0, 100},
		{"to right", 0, 0, 100, 0},
		{"90deg", 0, 50, 100, 50},
		{"180deg", 50, 0, 50, 100},
	}
	for _, tt := range tests {
		x1, y1, x2, y2 := Gradient{Direction: tt.dir}.Vector()
		if x1 != tt.x1 || y1 != tt.y1 || x2 != tt.x2 || y2 != tt.y2 {
			t.Errorf("%q = %v %v %v %v", tt.dir, x1, y1, x2, y2)
		}
	}
}

func TestStyleUnstyledHasNoVisual(t *testing.T) {
	got, diags := NewResolver(960, 540).Style(&slide.Element{Kind: slide.KindContainer})
	if got.HasVisual() || len(diags) != 0 {
		t.Errorf("unstyled container: visual=%v diags=%v", got.HasVisual(), diags)
	}
}

func TestStyleStackIndexClamped(t *testing.T) {
	tests := []struct {
		raw  any
		want int
	}{
		{3.0, 3},
		{-2.0, -2},
		{1e300, MaxStackIndex},
		{-1e300, -MaxStackIndex},
	}
	r := NewResolver(960, 540)
	for _, tt := range tests {
		el := &slide.Element{Kind: slide.KindFrame, Style: slide.Style{"zIndex": tt.raw, "order": tt.raw}}
		got, _ := r.Style(el)
		if got.Z != tt.want || got.Order != tt.want {
			t.Errorf("zIndex/order %v = %d/%d, want %d", tt.raw, got.Z, got.Order, tt.want)
		}
	}
}
