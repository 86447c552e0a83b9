package source

import "fmt"

// Span is a 1-indexed, half-open-by-convention range referencing a Source.
// Columns count Unicode scalar values, never bytes (spec §3, §9). A Span
// always references the pre-transformation source unless a fix application
// explicitly rebases it onto the post-fix text.
type Span struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// NewSpan constructs a Span, panicking only on the programmer error of an
// inverted range — this is an invariant of the core (spec §3), never a
// user-triggerable condition, so a panic here is acceptable (unlike on
// malformed shell input, which must never panic).
func NewSpan(startLine, startCol, endLine, endCol int) Span {
	s := Span{startLine, startCol, endLine, endCol}
	if !s.Valid() {
		panic(fmt.Sprintf("source: invalid span %v", s))
	}
	return s
}

// Valid reports whether (start) <= (end) lexicographically and both
// components are within the 1-indexed domain.
func (s Span) Valid() bool {
	if s.StartLine < 1 || s.StartCol < 1 || s.EndLine < 1 || s.EndCol < 1 {
		return false
	}
	if s.StartLine > s.EndLine {
		return false
	}
	if s.StartLine == s.EndLine && s.StartCol > s.EndCol {
		return false
	}
	return true
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	if before(other.StartLine, other.StartCol, s.StartLine, s.StartCol) {
		return false
	}
	if before(s.EndLine, s.EndCol, other.EndLine, other.EndCol) {
		return false
	}
	return true
}

// Overlaps reports whether s and other share at least one position.
func (s Span) Overlaps(other Span) bool {
	if !before(other.StartLine, other.StartCol, s.EndLine, s.EndCol) {
		return false
	}
	if !before(s.StartLine, s.StartCol, other.EndLine, other.EndCol) {
		return false
	}
	return true
}

// Before reports whether s starts strictly before other (used to sort
// diagnostics by span, spec §4.6).
func (s Span) Before(other Span) bool {
	if s.StartLine != other.StartLine {
		return s.StartLine < other.StartLine
	}
	return s.StartCol < other.StartCol
}

func before(l1, c1, l2, c2 int) bool {
	if l1 != l2 {
		return l1 < l2
	}
	return c1 < c2
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}
