package fixapply

import (
	"strings"
	"testing"

	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/source"
)

func TestApplyFixesSplicesReplacement(t *testing.T) {
	src := source.New("x.sh", "echo $FILE\n")
	d := diag.Diagnostic{
		Code:     "SEC002",
		Severity: diag.Error,
		Span:     source.Span{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 11},
		Fix:      &diag.Fix{Replacement: `"$FILE"`, Safety: diag.Safe},
	}
	result := ApplyFixes(src, []diag.Diagnostic{d}, diag.Safe, false)
	if result.NewSource != `echo "$FILE"`+"\n" {
		t.Errorf("NewSource = %q, want %q", result.NewSource, `echo "$FILE"`+"\n")
	}
	if len(result.Applied) != 1 {
		t.Errorf("Applied = %v, want 1 entry", result.Applied)
	}
}

func TestApplyFixesRespectsThreshold(t *testing.T) {
	src := source.New("x.sh", "echo $FILE\n")
	d := diag.Diagnostic{
		Code:     "SC2046",
		Span:     source.Span{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 11},
		Fix:      &diag.Fix{Replacement: `"$FILE"`, Safety: diag.SafeWithAssumptions},
	}
	result := ApplyFixes(src, []diag.Diagnostic{d}, diag.Safe, false)
	if result.NewSource != src.Text() {
		t.Errorf("expected no change at Safe threshold, got %q", result.NewSource)
	}
	if len(result.Applied) != 0 {
		t.Errorf("Applied = %v, want none", result.Applied)
	}
}

func TestApplyFixesSkipsOverlapping(t *testing.T) {
	src := source.New("x.sh", "echo $FILE\n")
	span := source.Span{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 11}
	d1 := diag.Diagnostic{Code: "A", Span: span, Fix: &diag.Fix{Replacement: "X", Safety: diag.Safe}}
	d2 := diag.Diagnostic{Code: "B", Span: span, Fix: &diag.Fix{Replacement: "Y", Safety: diag.Safe}}
	result := ApplyFixes(src, []diag.Diagnostic{d1, d2}, diag.Safe, false)
	if len(result.Applied) != 1 {
		t.Errorf("Applied = %v, want exactly 1 (one must be skipped as overlapping)", result.Applied)
	}
	if len(result.Skipped) != 1 {
		t.Errorf("Skipped = %v, want exactly 1", result.Skipped)
	}
}

func TestApplyFixesNoFixesLeavesDiffEmpty(t *testing.T) {
	src := source.New("x.sh", "echo hi\n")
	result := ApplyFixes(src, nil, diag.Safe, false)
	if result.Diff != "" {
		t.Errorf("Diff = %q, want empty for a no-op", result.Diff)
	}
}

func TestApplyFixesProducesUnifiedDiff(t *testing.T) {
	src := source.New("x.sh", "echo $FILE\n")
	d := diag.Diagnostic{
		Code: "SEC002",
		Span: source.Span{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 11},
		Fix:  &diag.Fix{Replacement: `"$FILE"`, Safety: diag.Safe},
	}
	result := ApplyFixes(src, []diag.Diagnostic{d}, diag.Safe, false)
	if !strings.Contains(result.Diff, "-echo $FILE") || !strings.Contains(result.Diff, `+echo "$FILE"`) {
		t.Errorf("Diff = %q, want lines showing the before/after", result.Diff)
	}
}
