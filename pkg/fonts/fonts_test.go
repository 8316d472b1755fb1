package fonts

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/style"
)

func TestMeasureSingleLine(t *testing.T) {
	m := NewMeasurer()
	w, h := m.Measure("Hello", style.Text{Size: 20}, layout.Unbounded)
	if w <= 0 || w > 5*20 {
		t.Errorf("width = %v, want within (0, 100]", w)
	}
	if math.Abs(h-28) > 1e-9 {
		t.Errorf("height = %v, want 28", h)
	}
}

func TestMeasureWraps(t *testing.T) {
	m := NewMeasurer()
	txt := style.Text{Size: 16}
	full, _ := m.Measure("the quick brown fox jumps over the lazy dog", txt, layout.Unbounded)
	w, h := m.Measure("the quick brown fox jumps over the lazy dog", txt, full/2)
	if w > full/2 {
		t.Errorf("wrapped width %v exceeds limit %v", w, full/2)
	}
	if lines := h / layout.LineHeight(txt); lines < 2 {
		t.Errorf("lines = %v, want at least 2", lines)
	}
}

func TestMeasureParagraphs(t *testing.T) {
	m := NewMeasurer()
	_, h := m.Measure("one\ntwo\nthree", style.Text{Size: 10, LineHeight: 1}, layout.Unbounded)
	if h != 30 {
		t.Errorf("height = %v, want 30", h)
	}
}

func TestBoldIsWider(t *testing.T) {
	m := NewMeasurer()
	regular, _ := m.Measure("Wide Words", style.Text{Size: 24}, layout.Unbounded)
	bold, _ := m.Measure("Wide Words", style.Text{Size: 24, Bold: true}, layout.Unbounded)
	if bold <= regular {
		t.Errorf("bold %v <= regular %v", bold, regular)
	}
}

func TestVariantOf(t *testing.T) {
	tests := []struct {
		text style.Text
		want Variant
	}{
		{style.Text{}, Regular},
		{style.Text{Bold: true}, Bold},
		{style.Text{Italic: true}, Italic},
		{style.Text{Bold: true, Italic: true}, BoldItalic},
	}
	for _, tt := range tests {
		if got := VariantOf(tt.text); got != tt.want {
			t.Errorf("VariantOf(%+v) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestEmptyText(t *testing.T) {
	if w, h := NewMeasurer().Measure("", style.Text{Size: 12}, 100); w != 0 || h != 0 {
		t.Errorf("empty = %v x %v", w, h)
	}
}

func TestLines(t *testing.T) {
	txt := style.Text{Size: 16}
	if got := Lines("", txt, 100); got != nil {
		t.Errorf("Lines(empty) = %q", got)
	}
	if got := Lines("a\nb", txt, layout.Unbounded); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("paragraphs = %q", got)
	}
	content := "the quick brown fox jumps over the lazy dog"
	full, _ := NewMeasurer().Measure(content, txt, layout.Unbounded)
	lines := Lines(content, txt, full/2)
	if len(lines) < 2 {
		t.Fatalf("lines = %q, want at least 2", lines)
	}
	if got := strings.Join(lines, " "); got != content {
		t.Errorf("rejoined = %q, want %q", got, content)
	}
}
