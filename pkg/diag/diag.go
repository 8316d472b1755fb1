// Package diag collects non-fatal conditions raised while resolving, laying
// out and rendering a slide.
//
// Library packages never print warnings. Every recoverable problem becomes a
// [Diagnostic] in a [List] that is returned alongside the primary result, so
// callers decide how to surface it (the CLI prints a table, tests assert on
// codes).
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/slideweave/pkg/errors"
)

// Severity classifies how a diagnostic should be presented.
type Severity int

const (
	// Warning marks input that was accepted after a documented fallback.
	Warning Severity = iota
	// Error marks input that was dropped or replaced by a placeholder.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is one recorded condition.
type Diagnostic struct {
	Code     errors.Code `json:"code"`
	Severity Severity    `json:"severity"`
	Path     string      `json:"path,omitempty"`
	Property string      `json:"property,omitempty"`
	Message  string      `json:"message"`
}

// String renders the diagnostic as "path [property]: CODE message".
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Path != "" {
		b.WriteString(d.Path)
		b.WriteString(" ")
	}
	if d.Property != "" {
		fmt.Fprintf(&b, "[%s] ", d.Property)
	}
	fmt.Fprintf(&b, "%s %s", d.Code, d.Message)
	return b.String()
}

// SeverityOf returns the severity diagnostics with code carry. Only an
// invalid tree shape drops input; every other code has a documented fallback.
func SeverityOf(code errors.Code) Severity {
	if code == errors.ErrCodeInvalidTreeShape {
		return Error
	}
	return Warning
}

// New builds a diagnostic with the severity of its code.
func New(code errors.Code, property, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityOf(code),
		Property: property,
		Message:  fmt.Sprintf(format, args...),
	}
}

// List is an ordered collection of diagnostics. The zero value is ready to use.
type List []Diagnostic

// Add appends d.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Addf appends a diagnostic built from the arguments.
func (l *List) Addf(code errors.Code, path, property, format string, args ...any) {
	d := New(code, property, format, args...)
	d.Path = path
	l.Add(d)
}

// Extend appends all diagnostics of other.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// WithPath returns a copy of l where empty paths are set to path.
func (l List) WithPath(path string) List {
	out := make(List, len(l))
	for i, d := range l {
		if d.Path == "" {
			d.Path = path
		}
		out[i] = d
	}
	return out
}

// Count returns the number of diagnostics with the given code.
func (l List) Count(code errors.Code) int {
	n := 0
	for _, d := range l {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Has reports whether any diagnostic carries code.
func (l List) Has(code errors.Code) bool {
	return l.Count(code) > 0
}

// Errors returns the diagnostics with Error severity.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// ByCode groups diagnostic counts by code, sorted by code name.
func (l List) ByCode() []CodeCount {
	counts := map[errors.Code]int{}
	for _, d := range l {
		counts[d.Code]++
	}
	out := make([]CodeCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CodeCount{Code: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// CodeCount pairs a code with its number of occurrences.
type CodeCount struct {
	Code  errors.Code
	Count int
}
