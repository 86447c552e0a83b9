package rules

import (
	"github.com/paiml/bashrs-sub018/internal/parser"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
	"github.com/paiml/bashrs-sub018/internal/source"
)

// buildContext parses src and wraps it in a Context for exercising a
// single rule's Check function directly, bypassing the Engine and its
// suppression/sorting/compatibility-filtering logic.
func buildContext(src string) *Context {
	s := source.New("x.sh", src)
	script, toks, _ := parser.Parse(s)
	return &Context{Source: s, Tokens: toks, Script: script, ShellType: shelltype.Bash}
}
