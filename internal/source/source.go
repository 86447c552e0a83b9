// Package source holds the immutable source buffer every other core
// component (lexer, parser, rule engine, purifier, emitter) addresses by
// line and column rather than by byte offset.
package source

import "strings"

// Source is an immutable UTF-8 source buffer plus a precomputed line index.
// Nothing in the core mutates a Source after construction; the purifier and
// emitter always produce a *new* Source rather than editing one in place.
type Source struct {
	path  string
	text  string
	lines []string // text split on '\n', without the trailing newline
}

// New builds a Source from raw bytes. path may be empty for in-memory input
// (e.g. piped from stdin); it is used only for diagnostics and shell-type
// detection.
func New(path, text string) *Source {
	return &Source{
		path:  path,
		text:  text,
		lines: strings.Split(text, "\n"),
	}
}

// Path returns the originating file path, or "" for anonymous input.
func (s *Source) Path() string { return s.path }

// Text returns the full source text.
func (s *Source) Text() string { return s.text }

// LineCount returns the number of (1-indexed) lines in the source.
func (s *Source) LineCount() int { return len(s.lines) }

// Line returns the 1-indexed line's text without its trailing newline.
// Returns "" for an out-of-range line rather than panicking: diagnostics
// derived from stale spans must never crash formatting.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	return s.lines[n-1]
}

// Slice returns the source text covered by a span (see package span).
func (s *Source) Slice(startLine, startCol, endLine, endCol int) string {
	if startLine == endLine {
		line := []rune(s.Line(startLine))
		return string(clampRunes(line, startCol-1, endCol-1))
	}
	var b strings.Builder
	first := []rune(s.Line(startLine))
	b.WriteString(string(clampRunes(first, startCol-1, len(first))))
	for l := startLine + 1; l < endLine; l++ {
		b.WriteByte('\n')
		b.WriteString(s.Line(l))
	}
	b.WriteByte('\n')
	last := []rune(s.Line(endLine))
	b.WriteString(string(clampRunes(last, 0, endCol-1)))
	return b.String()
}

// Offset converts a 1-indexed (line, col) position into a byte offset
// into Text(), for callers (the Auto-Fix Applier) that need to splice
// the underlying buffer directly rather than work line-by-line. col
// counts Unicode scalar values per spec §3, so each preceding rune on
// the target line is measured by its encoded length, not assumed to be
// one byte.
func (s *Source) Offset(line, col int) int {
	if line < 1 {
		line = 1
	}
	off := 0
	for l := 1; l < line; l++ {
		off += len(s.Line(l)) + 1 // +1 for the '\n' joining this line to the next
	}
	lineRunes := []rune(s.Line(line))
	if col < 1 {
		col = 1
	}
	n := col - 1
	if n > len(lineRunes) {
		n = len(lineRunes)
	}
	off += len(string(lineRunes[:n]))
	return off
}

func clampRunes(r []rune, start, end int) []rune {
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start > end {
		return nil
	}
	return r[start:end]
}
