package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/slideweave/pkg/slide"
)

// NamePlaceholder is replaced by the input base name in output patterns.
const NamePlaceholder = "[name]"

// WriteDeck encodes deck as indented JSON. The output can be re-imported with
// [ReadDeck].
func WriteDeck(deck *slide.Deck, w io.Writer) error {
	return WriteJSON(w, deck)
}

// ExportDeck writes deck to a JSON file at path.
func ExportDeck(deck *slide.Deck, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDeck(deck, f)
}

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// BaseName returns the file name of input without directory and extension.
// An empty input or "-" (stdin) yields "deck".
func BaseName(input string) string {
	if input == "" || input == "-" {
		return "deck"
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath builds the artifact path for one format. Every "[name]" in
// pattern is replaced by the input base name; an empty pattern means
// "[name]". The format is appended as extension.
func OutputPath(dir, pattern, input, format string) string {
	if pattern == "" {
		pattern = NamePlaceholder
	}
	name := strings.ReplaceAll(pattern, NamePlaceholder, BaseName(input))
	return filepath.Join(dir, name+"."+format)
}
