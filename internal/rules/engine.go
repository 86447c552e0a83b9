package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/paiml/bashrs-sub018/internal/token"
)

// Engine evaluates every eligible rule in a Registry over a parsed
// script and returns the suppression-filtered, deterministically
// ordered diagnostic list (spec §4.6's check contract).
type Engine struct {
	registry *Registry
}

func NewEngine(r *Registry) *Engine {
	return &Engine{registry: r}
}

// Check runs every rule whose Compatibility allows shellType, collects
// their diagnostics, applies `# shellcheck disable=...` suppression,
// and sorts the survivors by (start_line, start_col, code) — spec
// property P4: running Check twice on the same input yields an
// identical, identically ordered diagnostic list, since no rule here
// consults anything but its Context and every rule's own Check is
// pure.
func (e *Engine) Check(src *source.Source, toks []token.Token, script *ast.Script, st shelltype.ShellType) []diag.Diagnostic {
	ctx := &Context{Source: src, Tokens: toks, Script: script, ShellType: st}

	var diags []diag.Diagnostic
	for _, m := range e.registry.All() {
		if !m.Compatibility.Allows(st) {
			continue
		}
		diags = append(diags, m.Check(ctx)...)
	}

	fileCodes, ranges := collectSuppressions(script.Items)
	diags = filterSuppressed(diags, fileCodes, ranges)

	sort.SliceStable(diags, func(i, j int) bool { return diag.Less(diags[i], diags[j]) })
	return diags
}

var disableDirectiveRe = regexp.MustCompile(`shellcheck\s+disable=([\w,\s]+)`)

type suppressRange struct {
	codes             map[string]bool
	startLine, endLine int
}

// collectSuppressions finds shellcheck disable directives (spec §6,
// §4.6): a leading comment block at file scope suppresses those codes
// everywhere; any other disable comment suppresses only the statement
// that immediately follows it in the same item list.
func collectSuppressions(items []ast.Item) (fileCodes map[string]bool, ranges []suppressRange) {
	fileCodes = map[string]bool{}

	i := 0
	for i < len(items) {
		c, ok := items[i].(*ast.CommentItem)
		if !ok {
			break
		}
		for code := range parseDisableCodes(c.Text) {
			fileCodes[code] = true
		}
		i++
	}

	var walk func(items []ast.Item)
	walk = func(items []ast.Item) {
		for idx, it := range items {
			c, ok := it.(*ast.CommentItem)
			if !ok {
				descendInto(it, walk)
				continue
			}
			codes := parseDisableCodes(c.Text)
			if len(codes) == 0 || idx+1 >= len(items) {
				continue
			}
			next := items[idx+1]
			sp := next.Span()
			ranges = append(ranges, suppressRange{codes: codes, startLine: sp.StartLine, endLine: sp.EndLine})
		}
	}
	walk(items)

	return fileCodes, ranges
}

// descendInto visits the nested item lists of compound statements so
// statement-level suppression comments inside if/for/while/case/
// function/subshell/group bodies are found too.
func descendInto(it ast.Item, walk func([]ast.Item)) {
	switch v := it.(type) {
	case *ast.If:
		walk(v.Then)
		for _, elif := range v.Elifs {
			walk(elif.Body)
		}
		walk(v.Else)
	case *ast.For:
		walk(v.Body)
	case *ast.While:
		walk(v.Body)
	case *ast.Case:
		for _, arm := range v.Arms {
			walk(arm.Body)
		}
	case *ast.Function:
		walk(v.Body)
	case *ast.Subshell:
		walk(v.Body)
	case *ast.Group:
		walk(v.Body)
	}
}

func parseDisableCodes(comment string) map[string]bool {
	m := disableDirectiveRe.FindStringSubmatch(comment)
	if m == nil {
		return nil
	}
	out := map[string]bool{}
	for _, code := range strings.Split(m[1], ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			out[code] = true
		}
	}
	return out
}

func filterSuppressed(diags []diag.Diagnostic, fileCodes map[string]bool, ranges []suppressRange) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if fileCodes[d.Code] {
			continue
		}
		suppressed := false
		for _, r := range ranges {
			if r.codes[d.Code] && d.Span.StartLine >= r.startLine && d.Span.StartLine <= r.endLine {
				suppressed = true
				break
			}
		}
		if !suppressed {
			out = append(out, d)
		}
	}
	return out
}
