// Package fixapply implements the Auto-Fix Applier (spec §4.7): given a
// source buffer and the diagnostics the Rule Engine found for it,
// splice in every Fix at or under a safety threshold and report what
// was applied, what was skipped, and why.
package fixapply

import (
	"sort"

	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/pmezard/go-difflib/difflib"
)

// FixRef identifies which diagnostic's fix a Result entry refers to,
// without forcing callers to carry the whole Diagnostic around.
type FixRef struct {
	Code string
	Span source.Span
}

// Result is what ApplyFixes returns (spec §4.7).
type Result struct {
	NewSource string
	Applied   []FixRef
	Skipped   []FixRef
	// Notes carries one diag.Diagnostic (Severity=Note) per skipped fix,
	// e.g. "fix skipped: overlaps another fix" (spec §4.7).
	Notes []diag.Diagnostic
	// Diff is a unified diff of source -> NewSource, empty when nothing
	// changed. Always populated, even in dry-run mode, so a CLI can show
	// the user what *would* change.
	Diff string
}

// thresholdRank orders Safety from least to most permissive so a
// threshold of Safe excludes SafeWithAssumptions, while a threshold of
// SafeWithAssumptions includes both (spec §4.5: "--fix" applies Safe
// and SafeWithAssumptions fixes; Unsafe is never auto-applied).
func thresholdRank(s diag.Safety) int {
	switch s {
	case diag.Safe:
		return 1
	case diag.SafeWithAssumptions:
		return 2
	default:
		return 0
	}
}

// ApplyFixes splices every Fix in diagnostics whose Safety is at or
// under threshold into src, in reverse span order (spec §4.7
// algorithm). dryRun controls only whether the caller is told to
// persist NewSource — the computation itself is identical either way,
// matching spec §4.7's "dry-run: returns the set of would-be fixes
// without writing" (the actual disk write happens at the process
// boundary, in the CLI).
func ApplyFixes(src *source.Source, diagnostics []diag.Diagnostic, threshold diag.Safety, dryRun bool) Result {
	maxRank := thresholdRank(threshold)

	type candidate struct {
		d   diag.Diagnostic
		off int // start byte offset, used for overlap / ordering
		end int
	}
	var cands []candidate
	for _, d := range diagnostics {
		if d.Fix == nil || thresholdRank(d.Fix.Safety) == 0 || thresholdRank(d.Fix.Safety) > maxRank {
			continue
		}
		cands = append(cands, candidate{
			d:   d,
			off: src.Offset(d.Span.StartLine, d.Span.StartCol),
			end: src.Offset(d.Span.EndLine, d.Span.EndCol),
		})
	}

	// Reverse order by (end_line, end_col): splicing from the back of
	// the buffer forward means earlier offsets stay valid as later ones
	// are rewritten (spec §4.7).
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].end != cands[j].end {
			return cands[i].end > cands[j].end
		}
		return cands[i].off > cands[j].off
	})

	var result Result
	text := []byte(src.Text())

	lastStart := len(text) + 1 // sentinel: nothing consumed yet
	for _, c := range cands {
		if c.end > lastStart {
			// Overlaps the fix already applied (which started earlier in
			// the buffer, i.e. has a smaller/equal offset but we're
			// walking back-to-front so "already applied" means
			// later-starting, which per policy wins). Drop this one.
			result.Skipped = append(result.Skipped, FixRef{Code: c.d.Code, Span: c.d.Span})
			result.Notes = append(result.Notes, diag.Diagnostic{
				Code:     c.d.Code,
				Severity: diag.Note,
				Message:  "fix skipped: overlaps another fix",
				Span:     c.d.Span,
			})
			continue
		}
		spliced := make([]byte, 0, c.off+len(c.d.Fix.Replacement)+(len(text)-c.end))
		spliced = append(spliced, text[:c.off]...)
		spliced = append(spliced, c.d.Fix.Replacement...)
		spliced = append(spliced, text[c.end:]...)
		text = spliced
		result.Applied = append(result.Applied, FixRef{Code: c.d.Code, Span: c.d.Span})
		lastStart = c.off
	}

	result.NewSource = string(text)
	result.Diff = unifiedDiff(src.Path(), src.Text(), result.NewSource)
	return result
}

func unifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	name := path
	if name == "" {
		name = "source"
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name + " (fixed)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return ""
	}
	return text
}
