// Package rule houses the data model for Suricata signatures.
//
// A signature consists of an action, a header (protocol, addresses, ports
// and direction) and a list of options. Every part of a parsed signature
// carries the character range it was read from, so that editor queries can
// map a cursor offset back onto the syntax tree.
package rule

// Span is a half-open character range [Start, End) within a single rule
// line. Offsets are rune offsets relative to the start of the line; the
// consumer re-bases them to document-absolute offsets where needed.
type Span struct {
	Start int
	End   int
}

// NewSpan creates a span covering [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Contains reports whether offset falls inside the span. The end is
// exclusive, consistently with the half-open range definition.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Len returns the number of characters the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers no characters.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Shift returns the span moved by base characters. Used to translate
// line-relative spans into document-absolute ones.
func (s Span) Shift(base int) Span {
	return Span{Start: s.Start + base, End: s.End + base}
}

// Spanned pairs a value with the span it originates from.
type Spanned[T any] struct {
	Value T
	Span  Span
}

// NewSpanned pairs value with span.
func NewSpanned[T any](value T, span Span) Spanned[T] {
	return Spanned[T]{Value: value, Span: span}
}
