package bytecode

import "fmt"

// Span identifies a region of the source text as byte offsets [Start, End).
type Span struct {
	Start int
	End   int
}

// String returns a formatted string representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// IsZero returns true if the span has not been set.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Slice returns the part of source covered by the span. Offsets outside the
// source are clamped, so a stale span never panics.
func (s Span) Slice(source string) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	if start >= end {
		return ""
	}
	return source[start:end]
}
