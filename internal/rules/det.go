package rules

import (
	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
)

// detRules implements the determinism family (spec §4.6, §4.8.1):
// $RANDOM, $$, and timestamp subshells are flagged with Unsafe fixes —
// the Purifier, not the linter, performs the actual rewrite, since
// only it has a configured stable-substitution source (spec §9 Open
// Question #1) to offer as the alternative.
func detRules() []Meta {
	return []Meta{
		{ID: "DET001", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryDET, Check: checkDET001},
		{ID: "DET002", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryDET, Check: checkDET002},
		{ID: "DET003", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryDET, Check: checkDET003},
	}
}

func checkDET001(c *Context) []diag.Diagnostic {
	return scanForVar(c, "RANDOM", "DET001", "$RANDOM is non-deterministic between runs")
}

func checkDET002(c *Context) []diag.Diagnostic {
	return scanForVar(c, "$", "DET002", "$$ (the current PID) is non-deterministic between runs")
}

func scanForVar(c *Context, name, code, msg string) []diag.Diagnostic {
	var out []diag.Diagnostic
	Walk(c.Script.Items, func(it ast.Item) {
		cmd, ok := it.(*ast.Command)
		if !ok {
			return
		}
		for _, w := range Words(cmd) {
			WalkSegments(w, func(s ast.Segment) {
				v, ok := s.(*ast.VarExpand)
				if !ok || v.Name != name {
					return
				}
				out = append(out, diag.Diagnostic{
					Code:     code,
					Severity: diag.Warning,
					Message:  msg,
					Span:     v.Span(),
					Fix: &diag.Fix{
						Replacement: "",
						Safety:      diag.Unsafe,
						Alternatives: []string{
							"run purify to replace this with the configured stable-substitution source",
						},
					},
				})
			})
		}
	})
	return out
}

var timestampCommands = map[string]bool{"date": true, "uuidgen": true}

// checkDET003 flags $(date ...) / $(uuidgen) subshells.
func checkDET003(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	Walk(c.Script.Items, func(it ast.Item) {
		cmd, ok := it.(*ast.Command)
		if !ok {
			return
		}
		for _, w := range Words(cmd) {
			WalkSegments(w, func(s ast.Segment) {
				cs, ok := s.(*ast.CmdSub)
				if !ok || cs.Body == nil || len(cs.Body.Items) == 0 {
					return
				}
				inner, ok := cs.Body.Items[0].(*ast.Command)
				if !ok || inner.Name == nil || !timestampCommands[inner.Name.Raw()] {
					return
				}
				out = append(out, diag.Diagnostic{
					Code:     "DET003",
					Severity: diag.Warning,
					Message:  "timestamp/uuid subshell is non-deterministic between runs",
					Span:     cs.Span(),
					Fix: &diag.Fix{
						Replacement: "",
						Safety:      diag.Unsafe,
						Alternatives: []string{
							"run purify to replace this with the configured stable-substitution source",
						},
					},
				})
			})
		}
	})
	return out
}
