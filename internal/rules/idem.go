package rules

import (
	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
)

// idemRules implements the idempotency family (spec §4.6, §4.8.2):
// mkdir/rm/ln -s invocations that fail or misbehave on a second run,
// each with a SafeWithAssumptions fix mirroring the Purifier's own
// rewrite so `--fix` and `purify` agree on the result.
func idemRules() []Meta {
	return []Meta{
		{ID: "IDEM001", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: true, Category: CategoryIDEM, Check: checkIDEM001},
		{ID: "IDEM002", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: true, Category: CategoryIDEM, Check: checkIDEM002},
		{ID: "IDEM003", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: true, Category: CategoryIDEM, Check: checkIDEM003},
	}
}

func hasFlag(cmd *ast.Command, flags ...string) bool {
	want := make(map[string]bool, len(flags))
	for _, f := range flags {
		want[f] = true
	}
	for _, a := range cmd.Args {
		if want[a.Raw()] {
			return true
		}
	}
	return false
}

func checkIDEM001(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "mkdir" || hasFlag(cmd, "-p", "--parents") {
			continue
		}
		out = append(out, diag.Diagnostic{
			Code:     "IDEM001",
			Severity: diag.Warning,
			Message:  "mkdir without -p fails if the directory already exists",
			Span:     cmd.Name.Span(),
			Fix: &diag.Fix{
				Replacement: "mkdir -p",
				Safety:      diag.SafeWithAssumptions,
				Assumptions: []string{"the caller does not rely on mkdir failing when the directory already exists"},
			},
		})
	}
	return out
}

func checkIDEM002(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "rm" || hasFlag(cmd, "-f", "--force") {
			continue
		}
		out = append(out, diag.Diagnostic{
			Code:     "IDEM002",
			Severity: diag.Warning,
			Message:  "rm without -f fails if the target is already gone",
			Span:     cmd.Name.Span(),
			Fix: &diag.Fix{
				Replacement: "rm -f",
				Safety:      diag.SafeWithAssumptions,
				Assumptions: []string{"no subsequent branch inspects rm's exit status to detect a missing file"},
			},
		})
	}
	return out
}

func checkIDEM003(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "ln" || !hasFlag(cmd, "-s", "--symbolic") || len(cmd.Args) < 2 {
			continue
		}
		out = append(out, diag.Diagnostic{
			Code:     "IDEM003",
			Severity: diag.Warning,
			Message:  "ln -s fails on a second run if the link already exists",
			Span:     cmd.Name.Span(),
			Fix: &diag.Fix{
				Replacement: "rm -f " + cmd.Args[len(cmd.Args)-1].Raw() + " && ln",
				Safety:      diag.SafeWithAssumptions,
				Assumptions: []string{"removing a pre-existing file at the link target is safe"},
			},
		})
	}
	return out
}
