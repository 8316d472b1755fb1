package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// ReadDeck decodes a JSON deck from r.
//
// ReadDeck returns an INVALID_FORMAT error if the JSON is malformed or an
// element has a missing or unknown type, and an INVALID_INPUT error if the
// deck format is unknown or a slide is null. The returned deck is
// independent of r. ReadDeck does not close r.
func ReadDeck(r io.Reader) (*slide.Deck, error) {
	var deck slide.Deck
	if err := json.NewDecoder(r).Decode(&deck); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode deck")
	}
	if err := deck.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid deck")
	}
	if deck.Format == "" {
		deck.Format = slide.FormatWide
	}
	return &deck, nil
}

// ImportDeck reads a JSON deck file at path. A missing file is a
// FILE_NOT_FOUND error; decoding errors are those of [ReadDeck].
func ImportDeck(path string) (*slide.Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadDeck(f)
}
