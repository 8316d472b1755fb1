package diag

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/slideweave/pkg/errors"
)

func TestListAddAndCount(t *testing.T) {
	var l List
	l.Addf(errors.ErrCodeMalformedUnit, "slide[0]/text[0]", "padding", "unitless value %v", 16)
	l.Addf(errors.ErrCodeMalformedUnit, "slide[0]/text[1]", "margin", "unitless value %v", 8)
	l.Add(New(errors.ErrCodeUnsupportedColor, "color", "unknown color %q", "blurple"))

	if len(l) != 3 {
		t.Fatalf("len = %d, want 3", len(l))
	}
	if got := l.Count(errors.ErrCodeMalformedUnit); got != 2 {
		t.Errorf("Count(MALFORMED_UNIT) = %d, want 2", got)
	}
	if !l.Has(errors.ErrCodeUnsupportedColor) {
		t.Error("Has(UNSUPPORTED_COLOR) = false, want true")
	}
	if l.Has(errors.ErrCodeInvalidTreeShape) {
		t.Error("Has(INVALID_TREE_SHAPE) = true, want false")
	}
}

func TestWithPath(t *testing.T) {
	l := List{
		New(errors.ErrCodeMalformedUnit, "width", "x"),
		{Code: errors.ErrCodeUnsupportedColor, Path: "kept", Message: "y"},
	}
	got := l.WithPath("slide[1]/frame[0]")

	if got[0].Path != "slide[1]/frame[0]" {
		t.Errorf("got[0].Path = %q", got[0].Path)
	}
	if got[1].Path != "kept" {
		t.Errorf("got[1].Path = %q, want kept", got[1].Path)
	}
	if l[0].Path != "" {
		t.Error("WithPath must not modify the receiver")
	}
}

func TestErrorsAndByCode(t *testing.T) {
	l := List{
		{Code: errors.ErrCodeUnsupportedColor},
		{Code: errors.ErrCodeInvalidTreeShape, Severity: Error},
		{Code: errors.ErrCodeUnsupportedColor},
	}
	if got := len(l.Errors()); got != 1 {
		t.Errorf("len(Errors()) = %d, want 1", got)
	}

	counts := l.ByCode()
	if len(counts) != 2 {
		t.Fatalf("ByCode() len = %d, want 2", len(counts))
	}
	if counts[0].Code != errors.ErrCodeInvalidTreeShape || counts[1].Count != 2 {
		t.Errorf("ByCode() = %+v", counts)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: errors.ErrCodeMalformedUnit, Path: "slide[0]", Property: "gap", Message: "bad"}
	want := "slide[0] [gap] MALFORMED_UNIT bad"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(Diagnostic{Code: errors.ErrCodeInvalidTreeShape, Severity: Error})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"severity":"error"`) {
		t.Errorf("json = %s", data)
	}
}

func TestNewSeverity(t *testing.T) {
	tests := []struct {
		code errors.Code
		want Severity
	}{
		{errors.ErrCodeInvalidTreeShape, Error},
		{errors.ErrCodeMalformedUnit, Warning},
		{errors.ErrCodeEffectSourceUnavailable, Warning},
		{errors.ErrCodeUnknownProperty, Warning},
	}
	for _, tt := range tests {
		if got := New(tt.code, "", "x").Severity; got != tt.want {
			t.Errorf("New(%s).Severity = %v, want %v", tt.code, got, tt.want)
		}
	}
}
