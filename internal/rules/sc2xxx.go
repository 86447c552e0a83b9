package rules

import (
	"fmt"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
)

// sc2xxxRules implements a representative slice of the ~325 SC2xxx
// semantic family spec §4.6 describes: the handful the spec calls out
// by example (SC2086, SC2046, SC2116, SC2064), each WHAT-only — the
// shape of what's wrong, not a port of ShellCheck's own matcher.
func sc2xxxRules() []Meta {
	return []Meta{
		{ID: "SC2086", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: true, Category: CategorySC2, Check: checkSC2086},
		{ID: "SC2046", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: true, Category: CategorySC2, Check: checkSC2046},
		{ID: "SC2116", Severity: diag.Info, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySC2, Check: checkSC2116},
		{ID: "SC2064", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySC2, Check: checkSC2064},
	}
}

// quotableWords returns every Word in c that word-splitting/globbing
// can actually affect: args and env-assignment values, but not the
// command name (never split) and not redirection targets (already
// handled as a filename, not an argument list).
func quotableWords(cmd *ast.Command) []*ast.Word {
	var out []*ast.Word
	out = append(out, cmd.Args...)
	for _, e := range cmd.Env {
		if e.Value != nil {
			out = append(out, e.Value)
		}
	}
	return out
}

func checkSC2086(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		for _, w := range quotableWords(cmd) {
			v, ok := w.IsSimpleUnquotedVar()
			if !ok || v.IsSpecial {
				continue
			}
			out = append(out, diag.Diagnostic{
				Code:     "SC2086",
				Severity: diag.Warning,
				Message:  fmt.Sprintf("double quote to prevent globbing and word splitting: \"$%s\"", v.Name),
				Span:     w.Span(),
				Fix: &diag.Fix{
					Replacement: "\"" + w.Raw() + "\"",
					Safety:      diag.Safe,
				},
			})
		}
	}
	return out
}

func checkSC2046(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		for _, w := range quotableWords(cmd) {
			if len(w.Segments) != 1 {
				continue
			}
			cs, ok := w.Segments[0].(*ast.CmdSub)
			if !ok {
				continue
			}
			_ = cs
			out = append(out, diag.Diagnostic{
				Code:     "SC2046",
				Severity: diag.Warning,
				Message:  "quote this to prevent word splitting of the command substitution's output",
				Span:     w.Span(),
				Fix: &diag.Fix{
					Replacement: "\"" + w.Raw() + "\"",
					Safety:      diag.SafeWithAssumptions,
					Assumptions: []string{"caller does not rely on the substitution's output being re-split into multiple arguments"},
				},
			})
		}
	}
	return out
}

func checkSC2116(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		for _, w := range Words(cmd) {
			WalkSegments(w, func(s ast.Segment) {
				cs, ok := s.(*ast.CmdSub)
				if !ok || cs.Body == nil || len(cs.Body.Items) != 1 {
					return
				}
				inner, ok := cs.Body.Items[0].(*ast.Command)
				if !ok || inner.Name == nil || inner.Name.Raw() != "echo" {
					return
				}
				out = append(out, diag.Diagnostic{
					Code:     "SC2116",
					Severity: diag.Info,
					Message:  "useless echo: instead of $(echo foo) use foo directly",
					Span:     cs.Span(),
				})
			})
		}
	}
	return out
}

func checkSC2064(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "trap" || len(cmd.Args) == 0 {
			continue
		}
		action := cmd.Args[0]
		for _, seg := range action.Segments {
			if _, ok := seg.(*ast.DoubleQuoted); ok {
				out = append(out, diag.Diagnostic{
					Code:     "SC2064",
					Severity: diag.Warning,
					Message:  "use single quotes, otherwise this expands now rather than when the trap fires",
					Span:     action.Span(),
				})
				break
			}
		}
	}
	return out
}
