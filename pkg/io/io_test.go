package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/slide"
)

const sampleDeck = `{
  "title": "Talk",
  "defaults": {"fontSize": "16px"},
  "slides": [
    {
      "background": {"color": "#102030", "image": "bg.jpg", "size": "cover"},
      "children": [
        {"type": "heading", "level": 1, "content": "Hello"},
        {"type": "frame", "style": {"glassEffect": true, "flex": 1}, "children": [
          {"type": "text", "content": "inside"}
        ]}
      ]
    }
  ]
}`

func TestReadDeck(t *testing.T) {
	deck, err := ReadDeck(strings.NewReader(sampleDeck))
	if err != nil {
		t.Fatal(err)
	}
	if deck.Title != "Talk" || deck.Format != slide.FormatWide {
		t.Errorf("deck = %q format %q", deck.Title, deck.Format)
	}
	if deck.Defaults.FontSize != "16px" {
		t.Errorf("defaults = %+v", deck.Defaults)
	}
	if len(deck.Slides) != 1 {
		t.Fatalf("slides = %d", len(deck.Slides))
	}
	s := deck.Slides[0]
	if s.Background == nil || s.Background.Image != "bg.jpg" {
		t.Errorf("background = %+v", s.Background)
	}
	if len(s.Children) != 2 || s.Children[0].Kind != slide.KindHeading || s.Children[1].Kind != slide.KindFrame {
		t.Fatalf("children = %+v", s.Children)
	}
	if got := s.Children[1].Children[0].Content; got != "inside" {
		t.Errorf("nested content = %q", got)
	}
}

func TestReadDeckErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed json", `{"slides": [`, errors.ErrCodeInvalidFormat},
		{"unknown element type", `{"slides": [{"children": [{"type": "video"}]}]}`, errors.ErrCodeInvalidFormat},
		{"missing element type", `{"slides": [{"children": [{"content": "x"}]}]}`, errors.ErrCodeInvalidFormat},
		{"unknown format", `{"format": "square", "slides": []}`, errors.ErrCodeInvalidInput},
		{"null slide", `{"slides": [null]}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDeck(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadDeck() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestImportDeck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.json")
	if err := os.WriteFile(path, []byte(sampleDeck), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportDeck(path); err != nil {
		t.Fatal(err)
	}

	_, err := ImportDeck(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestDeckRoundTrip(t *testing.T) {
	deck, err := ReadDeck(strings.NewReader(sampleDeck))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportDeck(deck, path); err != nil {
		t.Fatal(err)
	}
	again, err := ImportDeck(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(deck, again); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"a\": 1\n}\n" {
		t.Errorf("WriteJSON() = %q", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		dir, pattern, input, format string
		want                        string
	}{
		{"out", "", "decks/talk.json", "png", filepath.Join("out", "talk.png")},
		{"out", "[name]-final", "talk.json", "pdf", filepath.Join("out", "talk-final.pdf")},
		{"", "slides", "talk.json", "svg", "slides.svg"},
		{"out", "[name]", "-", "json", filepath.Join("out", "deck.json")},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.dir, tt.pattern, tt.input, tt.format); got != tt.want {
			t.Errorf("OutputPath(%q, %q, %q, %q) = %q, want %q", tt.dir, tt.pattern, tt.input, tt.format, got, tt.want)
		}
	}
}
