// Package slide defines the declarative input model: decks, slides and the
// element tree laid out by package layout.
//
// Elements are built once by a loader (see package io) and treated as
// read-only afterwards. Later stages produce parallel structures instead of
// annotating elements in place.
package slide

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of element kinds.
type Kind int

const (
	KindContainer Kind = iota
	KindText
	KindHeading
	KindFrame
	KindImage
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindContainer, KindText, KindHeading, KindFrame, KindImage}

var kindNames = map[Kind]string{
	KindContainer: "container",
	KindText:      "text",
	KindHeading:   "heading",
	KindFrame:     "frame",
	KindImage:     "image",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a type name from deck JSON to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// IsLeaf reports whether elements of this kind must not have children.
func (k Kind) IsLeaf() bool {
	return k == KindText || k == KindHeading || k == KindImage
}

// IsText reports whether the kind carries a text payload.
func (k Kind) IsText() bool {
	return k == KindText || k == KindHeading
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown element type %q", string(b))
	}
	*k = parsed
	return nil
}

// Style maps property names to raw values as they appear in the deck: strings,
// float64 numbers, booleans, or nested objects for gradients and shadows.
type Style map[string]any

// Element is a node of the input tree.
type Element struct {
	Kind     Kind       `json:"type"`
	ID       string     `json:"id,omitempty"`
	Style    Style      `json:"style,omitempty"`
	Content  string     `json:"content,omitempty"`
	Src      string     `json:"src,omitempty"`
	Alt      string     `json:"alt,omitempty"`
	Level    int        `json:"level,omitempty"`
	Children []*Element `json:"children,omitempty"`
}

// Validate checks that the element can serve as the root of a layout
// invocation. Only the root is checked; problems deeper in the tree are
// reported as diagnostics by the layout solver.
func (e *Element) Validate() error {
	if e == nil {
		return fmt.Errorf("nil element")
	}
	if _, ok := kindNames[e.Kind]; !ok {
		return fmt.Errorf("unknown element kind %d", int(e.Kind))
	}
	return nil
}

// Label returns a short human-readable description used in paths and trees.
func (e *Element) Label() string {
	if e.ID != "" {
		return e.Kind.String() + "#" + e.ID
	}
	return e.Kind.String()
}

// Count returns the number of elements in the subtree rooted at e.
func (e *Element) Count() int {
	if e == nil {
		return 0
	}
	n := 1
	for _, c := range e.Children {
		n += c.Count()
	}
	return n
}

// Walk visits e and its descendants depth-first in document order. The
// callback receives the depth (0 for e). Returning false skips the children of
// the current element.
func (e *Element) Walk(fn func(el *Element, depth int) bool) {
	var walk func(el *Element, depth int)
	walk = func(el *Element, depth int) {
		if el == nil || !fn(el, depth) {
			return
		}
		for _, c := range el.Children {
			walk(c, depth+1)
		}
	}
	walk(e, 0)
}

// UnmarshalJSON decodes an element. The "type" field is required; an absent
// type would otherwise silently decode as a container.
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	var p struct {
		plain
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == nil {
		return fmt.Errorf("element is missing \"type\"")
	}
	kind, ok := ParseKind(*p.Type)
	if !ok {
		return fmt.Errorf("unknown element type %q", *p.Type)
	}
	*e = Element(p.plain)
	e.Kind = kind
	return nil
}
