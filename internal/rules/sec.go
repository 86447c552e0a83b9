package rules

import (
	"regexp"
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
)

// secRules implements the bashrs-native SEC family (spec §4.6). Every
// check here walks the AST, never the raw source text, which is what
// gives property P8 (no false positives on comments) for free: a
// comment never becomes a Command or Pipeline node, so it's never a
// candidate in the first place — the exact class of bug the spec cites
// (SEC008 historically matching "# curl ... | sh" as text).
func secRules() []Meta {
	return []Meta{
		{ID: "SEC001", Severity: diag.Error, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySEC, Check: checkSEC001},
		{ID: "SEC002", Severity: diag.Error, Compatibility: shelltype.Universal, HasFix: true, Category: CategorySEC, Check: checkSEC002},
		{ID: "SEC003", Severity: diag.Error, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySEC, Check: checkSEC003},
		{ID: "SEC004", Severity: diag.Error, Compatibility: shelltype.Universal, HasFix: true, Category: CategorySEC, Check: checkSEC004},
		{ID: "SEC005", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySEC, Check: checkSEC005},
		{ID: "SEC006", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySEC, Check: checkSEC006},
		{ID: "SEC007", Severity: diag.Warning, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySEC, Check: checkSEC007},
		{ID: "SEC008", Severity: diag.Error, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySEC, Check: checkSEC008},
	}
}

// checkSEC001 flags `eval` whose argument contains any expansion —
// eval-ing user-influenced input is the textbook injection vector.
func checkSEC001(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "eval" {
			continue
		}
		for _, a := range cmd.Args {
			if containsExpansion(a) {
				out = append(out, diag.Diagnostic{
					Code:     "SEC001",
					Severity: diag.Error,
					Message:  "eval on data that contains an expansion risks arbitrary code execution",
					Span:     a.Span(),
				})
			}
		}
	}
	return out
}

// checkSEC002 flags unquoted expansions inside the dangerous positions
// SC2086 doesn't cover on its own: directly as an argument to `rm`,
// `eval`, `sh` or `bash`, where word-splitting can inject extra
// arguments or flags.
func checkSEC002(c *Context) []diag.Diagnostic {
	dangerous := map[string]bool{"rm": true, "eval": true, "sh": true, "bash": true}
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || !dangerous[cmd.Name.Raw()] {
			continue
		}
		for _, a := range cmd.Args {
			if v, ok := a.IsSimpleUnquotedVar(); ok && !v.IsSpecial {
				out = append(out, diag.Diagnostic{
					Code:     "SEC002",
					Severity: diag.Error,
					Message:  "unquoted expansion in a dangerous argument position can inject flags or extra arguments",
					Span:     a.Span(),
					Fix: &diag.Fix{
						Replacement: "\"" + a.Raw() + "\"",
						Safety:      diag.Safe,
					},
				})
			}
		}
	}
	return out
}

// checkSEC003 flags `find -exec sh -c '...{}...'` where {} is embedded
// inside the shell-command string (not a standalone argument) — the
// shape that lets a crafted filename break out into the shell (spec
// §4.6: "only when {} is embedded inside a shell-command string").
func checkSEC003(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "find" {
			continue
		}
		for i, a := range cmd.Args {
			if a.Raw() != "-exec" || i+2 >= len(cmd.Args) {
				continue
			}
			shellName := cmd.Args[i+1].Raw()
			if shellName != "sh" && shellName != "bash" {
				continue
			}
			for j := i + 2; j < len(cmd.Args); j++ {
				raw := cmd.Args[j].Raw()
				if raw == ";" || raw == "+" {
					break
				}
				if strings.Contains(raw, "{}") && len(raw) > len("{}") {
					out = append(out, diag.Diagnostic{
						Code:     "SEC003",
						Severity: diag.Error,
						Message:  "{} embedded inside a shell-command string passed to find -exec sh -c is injectable via a crafted filename",
						Span:     cmd.Args[j].Span(),
					})
				}
			}
		}
	}
	return out
}

var insecureTLSFlags = map[string]bool{"-k": true, "--insecure": true, "--no-check-certificate": true}

// checkSEC004 flags curl -k/--insecure and wget --no-check-certificate.
func checkSEC004(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil {
			continue
		}
		name := cmd.Name.Raw()
		if name != "curl" && name != "wget" {
			continue
		}
		for _, a := range cmd.Args {
			if insecureTLSFlags[a.Raw()] {
				out = append(out, diag.Diagnostic{
					Code:     "SEC004",
					Severity: diag.Error,
					Message:  "TLS certificate verification disabled",
					Span:     a.Span(),
					Fix: &diag.Fix{
						Replacement: "",
						Safety:      diag.SafeWithAssumptions,
						Assumptions: []string{"the endpoint's certificate is actually trustworthy once verification is re-enabled"},
					},
				})
			}
		}
	}
	return out
}

var secretNameRe = regexp.MustCompile(`(?i)^(password|secret|token|api_?key|access_?key)$`)
var hexSecretRe = regexp.MustCompile(`^[A-Za-z0-9_/+=.-]{20,}$`)

// checkSEC005 flags assignments whose name looks like a credential and
// whose value is a plain literal (not sourced from env/file/prompt).
func checkSEC005(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	Walk(c.Script.Items, func(it ast.Item) {
		for _, a := range assignmentsOf(it) {
			if a.Value == nil || !secretNameRe.MatchString(a.Name) || len(a.Value.Segments) != 1 {
				continue
			}
			lit, ok := a.Value.Segments[0].(*ast.Literal)
			if !ok || !hexSecretRe.MatchString(lit.Value) {
				continue
			}
			out = append(out, diag.Diagnostic{
				Code:     "SEC005",
				Severity: diag.Warning,
				Message:  "hardcoded credential-looking value; source it from the environment or a secret store instead",
				Span:     a.Value.Span(),
			})
		}
	})
	return out
}

// checkSEC006 flags predictable temp file paths built from $$ or
// $RANDOM directly under /tmp without mktemp.
func checkSEC006(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		for _, w := range quotableWords(cmd) {
			if !strings.HasPrefix(w.Raw(), "/tmp/") {
				continue
			}
			WalkSegments(w, func(s ast.Segment) {
				v, ok := s.(*ast.VarExpand)
				if !ok {
					return
				}
				if v.Name == "$" || v.Name == "RANDOM" {
					out = append(out, diag.Diagnostic{
						Code:     "SEC006",
						Severity: diag.Warning,
						Message:  "predictable temp file path; use mktemp instead",
						Span:     w.Span(),
					})
				}
			})
		}
	}
	return out
}

// checkSEC007 flags `sudo` whose argument list contains an unquoted
// expansion, letting injected words escalate with root privilege.
func checkSEC007(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || cmd.Name.Raw() != "sudo" {
			continue
		}
		for _, a := range cmd.Args {
			if v, ok := a.IsSimpleUnquotedVar(); ok && !v.IsSpecial {
				out = append(out, diag.Diagnostic{
					Code:     "SEC007",
					Severity: diag.Warning,
					Message:  "unquoted, unvalidated expansion passed to sudo",
					Span:     a.Span(),
				})
			}
		}
	}
	return out
}

// checkSEC008 flags `curl ... | sh` / `wget -O- ... | bash` pipelines —
// remote code execution with no integrity check.
func checkSEC008(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	Walk(c.Script.Items, func(it ast.Item) {
		pl, ok := it.(*ast.Pipeline)
		if !ok || len(pl.Stages) < 2 {
			return
		}
		for i := 0; i+1 < len(pl.Stages); i++ {
			fetcher, ok := pl.Stages[i].(*ast.Command)
			if !ok || fetcher.Name == nil {
				continue
			}
			fname := fetcher.Name.Raw()
			if fname != "curl" && fname != "wget" {
				continue
			}
			shell, ok := pl.Stages[i+1].(*ast.Command)
			if !ok || shell.Name == nil {
				continue
			}
			sname := shell.Name.Raw()
			if sname == "sh" || sname == "bash" || sname == "zsh" {
				out = append(out, diag.Diagnostic{
					Code:     "SEC008",
					Severity: diag.Error,
					Message:  "piping a network fetch directly into a shell executes unverified remote code",
					Span:     pl.Span(),
				})
			}
		}
	})
	return out
}

func containsExpansion(w *ast.Word) bool {
	found := false
	WalkSegments(w, func(s ast.Segment) {
		switch s.(type) {
		case *ast.VarExpand, *ast.CmdSub, *ast.ArithSub:
			found = true
		}
	})
	return found
}
