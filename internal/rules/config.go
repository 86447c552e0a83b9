package rules

import (
	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
)

// configRules implements the shell-rc-hygiene family (spec §4.6): the
// checks that only make sense across a whole init file rather than one
// command at a time, so (unlike the other families) they carry
// cross-command state while walking.
func configRules() []Meta {
	return []Meta{
		{ID: "CONFIG001", Severity: diag.Info, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryCONFIG, Check: checkCONFIG001},
		{ID: "CONFIG002", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: true, Category: CategoryCONFIG, Check: checkCONFIG002},
		{ID: "CONFIG003", Severity: diag.Info, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryCONFIG, Check: checkCONFIG003},
		{ID: "CONFIG004", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryCONFIG, Check: checkCONFIG004},
		{ID: "CONFIG005", Severity: diag.Perf, Compatibility: shelltype.Universal, HasFix: false, Category: CategoryCONFIG, Check: checkCONFIG005},
	}
}

// checkCONFIG001 flags a literal PATH segment appended more than once
// across the file (dedup preserving first occurrence, per the
// Purifier's own policy in spec §4.8.2 — the linter only flags, it
// doesn't rewrite).
func checkCONFIG001(c *Context) []diag.Diagnostic {
	seen := map[string]bool{}
	var out []diag.Diagnostic
	Walk(c.Script.Items, func(it ast.Item) {
		for _, a := range assignmentsOf(it) {
			if a.Name != "PATH" || a.Value == nil {
				continue
			}
			for _, entry := range splitPathLiterals(a.Value) {
				if seen[entry] {
					out = append(out, diag.Diagnostic{
						Code:     "CONFIG001",
						Severity: diag.Info,
						Message:  "duplicate PATH entry: " + entry,
						Span:     a.Value.Span(),
					})
				}
				seen[entry] = true
			}
		}
	})
	return out
}

// splitPathLiterals extracts the literal (non-expansion) colon-joined
// path segments out of a PATH assignment's value, ignoring
// $PATH-referencing segments themselves.
func splitPathLiterals(w *ast.Word) []string {
	var out []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = nil
		}
	}
	for _, seg := range w.Segments {
		lit, ok := seg.(*ast.Literal)
		if !ok {
			flush()
			continue
		}
		for i := 0; i < len(lit.Value); i++ {
			if lit.Value[i] == ':' {
				flush()
			} else {
				cur = append(cur, lit.Value[i])
			}
		}
	}
	flush()
	return out
}

// checkCONFIG002 flags unquoted variable reads in rc-file assignments
// and commands — same shape as SC2086 but surfaced under the CONFIG
// family since rc files are where a split $PATH entry causes the
// hardest-to-diagnose breakage.
func checkCONFIG002(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	Walk(c.Script.Items, func(it ast.Item) {
		for _, a := range assignmentsOf(it) {
			if a.Value == nil {
				continue
			}
			v, ok := a.Value.IsSimpleUnquotedVar()
			if !ok || v.IsSpecial || a.Name == v.Name {
				continue
			}
			out = append(out, diag.Diagnostic{
				Code:     "CONFIG002",
				Severity: diag.Warning,
				Message:  "unquoted variable in rc-file assignment",
				Span:     a.Value.Span(),
				Fix: &diag.Fix{
					Replacement: "\"" + a.Value.Raw() + "\"",
					Safety:      diag.Safe,
				},
			})
		}
	})
	return out
}

// assignmentsOf returns the assignments an item makes: a scoped
// *ast.Assignment, or the Env of a command with no name (a plain
// NAME=value line).
func assignmentsOf(it ast.Item) []*ast.Assignment {
	switch v := it.(type) {
	case *ast.Assignment:
		return []*ast.Assignment{v}
	case *ast.Command:
		if v.Name == nil {
			return v.Env
		}
	}
	return nil
}

// checkCONFIG003 flags a later `alias NAME=...` shadowing an earlier
// one in the same file — ShellCheck et al. keep the last definition,
// so the earlier one is dead weight (spec §4.8.2: "keep last; dedup").
func checkCONFIG003(c *Context) []diag.Diagnostic {
	last := map[string]*ast.Command{}
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "alias" {
			continue
		}
		for _, a := range cmd.Args {
			name, _, ok := splitAliasArg(a.Raw())
			if !ok {
				continue
			}
			if prev, dup := last[name]; dup {
				out = append(out, diag.Diagnostic{
					Code:     "CONFIG003",
					Severity: diag.Info,
					Message:  "duplicate alias definition for " + name + "; the earlier one is shadowed",
					Span:     prev.Span(),
				})
			}
			last[name] = cmd
		}
	}
	return out
}

func splitAliasArg(raw string) (name, value string, ok bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '=' {
			return raw[:i], raw[i+1:], true
		}
	}
	return "", "", false
}

// checkCONFIG004 flags the same non-deterministic constructs DET001-3
// catch, reported under CONFIG since in an rc file they also slow down
// every new shell's startup unpredictably.
func checkCONFIG004(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range checkDET001(c) {
		out = append(out, recode(d, "CONFIG004"))
	}
	for _, d := range checkDET002(c) {
		out = append(out, recode(d, "CONFIG004"))
	}
	for _, d := range checkDET003(c) {
		out = append(out, recode(d, "CONFIG004"))
	}
	return out
}

func recode(d diag.Diagnostic, code string) diag.Diagnostic {
	d.Code = code
	return d
}

var eagerInitializers = map[string]bool{
	"rbenv": true, "pyenv": true, "nvm": true, "nodenv": true, "direnv": true,
}

// checkCONFIG005 flags command substitutions invoking a known-slow
// version-manager initializer unconditionally at file scope (not
// guarded by a command-exists check or lazy-loaded).
func checkCONFIG005(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		for _, w := range Words(cmd) {
			WalkSegments(w, func(s ast.Segment) {
				cs, ok := s.(*ast.CmdSub)
				if !ok || cs.Body == nil || len(cs.Body.Items) == 0 {
					return
				}
				inner, ok := cs.Body.Items[0].(*ast.Command)
				if !ok || inner.Name == nil || !eagerInitializers[inner.Name.Raw()] {
					return
				}
				out = append(out, diag.Diagnostic{
					Code:     "CONFIG005",
					Severity: diag.Perf,
					Message:  inner.Name.Raw() + " initializer runs unconditionally on every shell startup; consider lazy-loading it",
					Span:     cs.Span(),
				})
			})
		}
	}
	return out
}
