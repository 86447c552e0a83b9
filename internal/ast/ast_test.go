package ast

import (
	"testing"

	"github.com/paiml/bashrs-sub018/internal/source"
)

func TestWordRawConcatenatesSegments(t *testing.T) {
	sp := source.Span{}
	w := &Word{Segments: []Segment{
		NewLiteral(sp, "hello-"),
		NewVarExpand(sp, "NAME", false, OpNone, "", false),
	}}
	if got := w.Raw(); got != "hello-$NAME" {
		t.Errorf("Raw() = %q, want %q", got, "hello-$NAME")
	}
}

func TestWordRawHandlesBracedVarExpand(t *testing.T) {
	sp := source.Span{}
	w := &Word{Segments: []Segment{
		NewVarExpand(sp, "FOO", true, OpDefault, "bar", false),
	}}
	if got := w.Raw(); got != "${FOO:-bar}" {
		t.Errorf("Raw() = %q, want %q", got, "${FOO:-bar}")
	}
}

func TestIsSimpleUnquotedVarTrueForBareVar(t *testing.T) {
	sp := source.Span{}
	w := &Word{Segments: []Segment{NewVarExpand(sp, "FILE", false, OpNone, "", false)}}
	v, ok := w.IsSimpleUnquotedVar()
	if !ok || v.Name != "FILE" {
		t.Errorf("IsSimpleUnquotedVar() = (%v, %v), want (FILE, true)", v, ok)
	}
}

func TestIsSimpleUnquotedVarFalseForMultiSegment(t *testing.T) {
	sp := source.Span{}
	w := &Word{Segments: []Segment{
		NewLiteral(sp, "prefix-"),
		NewVarExpand(sp, "FILE", false, OpNone, "", false),
	}}
	if _, ok := w.IsSimpleUnquotedVar(); ok {
		t.Error("IsSimpleUnquotedVar() = true, want false for a multi-segment word")
	}
}

func TestIsSimpleUnquotedVarFalseForQuoted(t *testing.T) {
	sp := source.Span{}
	inner := NewVarExpand(sp, "FILE", false, OpNone, "", false)
	w := &Word{Segments: []Segment{NewDoubleQuoted(sp, []Segment{inner})}}
	if _, ok := w.IsSimpleUnquotedVar(); ok {
		t.Error("IsSimpleUnquotedVar() = true, want false when wrapped in double quotes")
	}
}

func TestWordRawOfCmdSubAndArithSub(t *testing.T) {
	sp := source.Span{}
	w := &Word{Segments: []Segment{
		NewCmdSub(sp, &Script{}, false),
		NewArithSub(sp, "1+1"),
	}}
	if got := w.Raw(); got != "$(...)$((1+1))" {
		t.Errorf("Raw() = %q, want %q", got, "$(...)$((1+1))")
	}
}
