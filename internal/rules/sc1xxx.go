package rules

import (
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
)

// sc1xxxRules covers the subset of source/lexical SC1xxx checks that
// need the parsed AST rather than the raw byte stream — the Unicode
// hazard and unterminated-quote SC1xxx codes are emitted directly by
// the lexer (spec §4.1) and are not duplicated here.
func sc1xxxRules() []Meta {
	return []Meta{
		{ID: "SC1084", Severity: diag.Error, Compatibility: shelltype.Universal, HasFix: true, Category: CategorySC1, Check: checkSC1084},
		{ID: "SC1090", Severity: diag.Info, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySC1, Check: checkSC1090},
		{ID: "SC1091", Severity: diag.Info, Compatibility: shelltype.Universal, HasFix: false, Category: CategorySC1, Check: checkSC1091},
	}
}

// checkSC1084 flags a reversed shebang spelling ("!#" instead of "#!").
func checkSC1084(c *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, it := range c.Script.Items {
		s, ok := it.(*ast.ShebangItem)
		if !ok {
			continue
		}
		if strings.HasPrefix(s.Interpreter, "!") {
			out = append(out, diag.Diagnostic{
				Code:     "SC1084",
				Severity: diag.Error,
				Message:  "shebang is reversed: use #!, not !#",
				Span:     s.Span(),
				Fix: &diag.Fix{
					Replacement: "#!" + strings.TrimPrefix(s.Interpreter, "!"),
					Safety:      diag.Safe,
				},
			})
		}
	}
	return out
}

// checkSC1090/91 flag `source`/`.` invocations bashrs cannot statically
// resolve: a non-literal path (SC1090) or a literal relative path that
// likely needs a separate `# shellcheck source=` directive to resolve
// (SC1091). Neither code touches the filesystem — the core never does
// I/O (spec §5) — they only look at the shape of the argument Word.
func checkSC1090(c *Context) []diag.Diagnostic {
	return checkSourceDirective(c, "SC1090", func(w *ast.Word) bool {
		return !isLiteralWord(w)
	}, "can't follow non-constant source; consider a '# shellcheck source=' directive")
}

func checkSC1091(c *Context) []diag.Diagnostic {
	return checkSourceDirective(c, "SC1091", func(w *ast.Word) bool {
		return isLiteralWord(w) && !strings.HasPrefix(w.Raw(), "/")
	}, "not following relative sourced file; bashrs does not resolve it on disk")
}

func checkSourceDirective(c *Context, code string, match func(*ast.Word) bool, msg string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, cmd := range Commands(c.Script.Items) {
		if cmd.Name == nil || len(cmd.Args) == 0 {
			continue
		}
		name := cmd.Name.Raw()
		if name != "source" && name != "." {
			continue
		}
		target := cmd.Args[0]
		if match(target) {
			out = append(out, diag.Diagnostic{
				Code:     code,
				Severity: diag.Info,
				Message:  msg,
				Span:     target.Span(),
			})
		}
	}
	return out
}

func isLiteralWord(w *ast.Word) bool {
	for _, s := range w.Segments {
		switch s.(type) {
		case *ast.Literal, *ast.SingleQuoted:
		default:
			return false
		}
	}
	return true
}
