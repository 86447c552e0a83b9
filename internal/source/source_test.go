package source

import "testing"

func TestLineOutOfRange(t *testing.T) {
	s := New("x.sh", "echo hi\necho bye\n")
	if got := s.Line(0); got != "" {
		t.Errorf("Line(0) = %q, want empty", got)
	}
	if got := s.Line(100); got != "" {
		t.Errorf("Line(100) = %q, want empty", got)
	}
	if got := s.Line(1); got != "echo hi" {
		t.Errorf("Line(1) = %q, want %q", got, "echo hi")
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	text := "echo hi\necho bye\nlast line"
	s := New("x.sh", text)

	tests := []struct {
		line, col int
		want      int
	}{
		{1, 1, 0},
		{1, 6, 5},
		{2, 1, len("echo hi\n")},
		{3, 1, len("echo hi\necho bye\n")},
	}
	for _, tt := range tests {
		if got := s.Offset(tt.line, tt.col); got != tt.want {
			t.Errorf("Offset(%d,%d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestOffsetUnicodeColumnsAreRuneCounted(t *testing.T) {
	// "café x" — é is one rune but two UTF-8 bytes; col 6 (the space)
	// must land after é's 2-byte encoding, not after 1 byte.
	text := "café x"
	s := New("x.sh", text)
	off := s.Offset(1, 5) // col 5 is the space, after c-a-f-é (4 runes)
	if text[off] != ' ' {
		t.Errorf("Offset(1,5) = %d, text[off] = %q, want ' '", off, text[off])
	}
}

func TestSliceSingleLine(t *testing.T) {
	s := New("", "echo hello world")
	got := s.Slice(1, 6, 1, 11)
	if got != "hello" {
		t.Errorf("Slice = %q, want %q", got, "hello")
	}
}

func TestSliceMultiLine(t *testing.T) {
	s := New("", "echo one\necho two\necho three")
	got := s.Slice(1, 6, 3, 11)
	want := "one\necho two\necho three"
	if got != want {
		t.Errorf("Slice = %q, want %q", got, want)
	}
}

func TestSpanValid(t *testing.T) {
	if !(Span{1, 1, 1, 5}).Valid() {
		t.Error("expected valid span")
	}
	if (Span{2, 1, 1, 1}).Valid() {
		t.Error("expected invalid span (end before start line)")
	}
	if (Span{1, 5, 1, 1}).Valid() {
		t.Error("expected invalid span (end col before start col, same line)")
	}
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{1, 1, 1, 10}
	b := Span{1, 5, 1, 15}
	c := Span{2, 1, 2, 5}
	if !a.Overlaps(b) {
		t.Error("a and b should overlap")
	}
	if a.Overlaps(c) {
		t.Error("a and c should not overlap")
	}
}

func TestSpanBefore(t *testing.T) {
	a := Span{1, 1, 1, 5}
	b := Span{1, 6, 1, 10}
	if !a.Before(b) {
		t.Error("a should be before b")
	}
	if b.Before(a) {
		t.Error("b should not be before a")
	}
}
