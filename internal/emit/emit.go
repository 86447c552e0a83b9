// Package emit pretty-prints a bashrs AST back to shell text (spec §4.9).
// Structurally it walks the tree the same way the teacher's pkg/shellformat
// walks mvdan.cc/sh/v3/syntax nodes into a bytes.Buffer with an indent
// counter — generalized here to bashrs's own ast.Item/ast.Word model and to
// whole scripts rather than one-liners.
package emit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
)

// Option configures the emitter.
type Option func(*printer)

// WithIndent sets the indentation width in spaces (default: 2).
func WithIndent(n int) Option {
	return func(p *printer) { p.indentWidth = n }
}

// WithShebang overrides the emitted shebang line (default: "#!/bin/sh").
func WithShebang(s string) Option {
	return func(p *printer) { p.shebang = s }
}

type printer struct {
	buf         bytes.Buffer
	indent      int
	indentWidth int
	shebang     string
	heredocs    []*ast.Redir
}

// Emit renders script as POSIX shell text (spec §4.9): one shebang line,
// one logical statement per line, deterministic whitespace, tab-indented
// heredoc bodies.
func Emit(script *ast.Script, opts ...Option) string {
	p := &printer{indentWidth: 2, shebang: "#!/bin/sh"}
	for _, o := range opts {
		o(p)
	}

	hasShebang := len(script.Items) > 0
	if hasShebang {
		if _, ok := script.Items[0].(*ast.ShebangItem); !ok {
			hasShebang = false
		}
	}
	if !hasShebang {
		p.buf.WriteString(p.shebang)
		p.buf.WriteByte('\n')
	}

	for _, it := range script.Items {
		p.item(it)
	}
	return p.buf.String()
}

func (p *printer) writeIndent() {
	p.buf.WriteString(strings.Repeat(" ", p.indent*p.indentWidth))
}

func (p *printer) items(items []ast.Item) {
	p.indent++
	for _, it := range items {
		p.item(it)
	}
	p.indent--
}

func (p *printer) item(it ast.Item) {
	switch v := it.(type) {
	case *ast.ShebangItem:
		p.buf.WriteString("#!")
		p.buf.WriteString(v.Interpreter)
		p.buf.WriteByte('\n')
	case *ast.CommentItem:
		p.writeIndent()
		p.buf.WriteString("# ")
		p.buf.WriteString(v.Text)
		p.buf.WriteByte('\n')
	case *ast.Assignment:
		p.writeIndent()
		p.assignment(v)
		p.buf.WriteByte('\n')
	case *ast.Command:
		p.writeIndent()
		p.command(v)
		p.buf.WriteByte('\n')
		p.flushHeredocs()
	case *ast.Pipeline:
		p.writeIndent()
		p.pipeline(v)
		p.buf.WriteByte('\n')
		p.flushHeredocs()
	case *ast.List:
		p.writeIndent()
		p.list(v)
		p.buf.WriteByte('\n')
		p.flushHeredocs()
	case *ast.If:
		p.ifClause(v)
	case *ast.For:
		p.forClause(v)
	case *ast.While:
		p.whileClause(v)
	case *ast.Case:
		p.caseClause(v)
	case *ast.Function:
		p.funcDecl(v)
	case *ast.Subshell:
		p.subshell(v)
	case *ast.Group:
		p.group(v)
	default:
		p.writeIndent()
		fmt.Fprintf(&p.buf, "# <unemittable item %T>\n", v)
	}
}

// inline renders a single Item without a trailing newline or leading
// indent, for use inside list/pipeline chains.
func (p *printer) inline(it ast.Item) {
	switch v := it.(type) {
	case *ast.Command:
		p.command(v)
	case *ast.Pipeline:
		p.pipeline(v)
	case *ast.Assignment:
		p.assignment(v)
	default:
		// Compound statements (If/For/...) inside a list chain are rare in
		// practice; fall back to their own multi-line form inline.
		p.item(v)
	}
}

func (p *printer) list(l *ast.List) {
	for i, elem := range l.Elems {
		if i > 0 {
			p.buf.WriteByte(' ')
		}
		p.inline(elem.Item)
		switch elem.Connector {
		case ast.ConnSequence:
			p.buf.WriteString(";")
		case ast.ConnBackground:
			p.buf.WriteString(" &")
		case ast.ConnAnd:
			p.buf.WriteString(" &&")
		case ast.ConnOr:
			p.buf.WriteString(" ||")
		case ast.ConnNone:
		}
	}
}

func (p *printer) pipeline(pl *ast.Pipeline) {
	if pl.Negated {
		p.buf.WriteString("! ")
	}
	for i, stage := range pl.Stages {
		if i > 0 {
			p.buf.WriteString(" | ")
		}
		p.inline(stage)
	}
}

func (p *printer) assignment(a *ast.Assignment) {
	switch a.Scope {
	case ast.ScopeLocal:
		p.buf.WriteString("local ")
	case ast.ScopeDeclare:
		p.buf.WriteString("declare ")
	case ast.ScopeReadonly:
		p.buf.WriteString("readonly ")
	case ast.ScopeExport:
		p.buf.WriteString("export ")
	case ast.ScopeTypeset:
		p.buf.WriteString("typeset ")
	}
	p.buf.WriteString(a.Name)
	p.buf.WriteString(string(a.Kind))
	p.writeWord(a.Value, true)
}

func (p *printer) command(c *ast.Command) {
	first := true
	for _, e := range c.Env {
		if !first {
			p.buf.WriteByte(' ')
		}
		first = false
		p.buf.WriteString(e.Name)
		p.buf.WriteString(string(e.Kind))
		p.writeWord(e.Value, true)
	}
	if c.Name != nil {
		if !first {
			p.buf.WriteByte(' ')
		}
		first = false
		p.writeWord(c.Name, false)
		for _, a := range c.Args {
			p.buf.WriteByte(' ')
			p.writeWord(a, true)
		}
	}
	for _, r := range c.Redirs {
		p.buf.WriteByte(' ')
		p.writeRedirect(r)
	}
}

func (p *printer) writeRedirect(r *ast.Redir) {
	p.buf.WriteString(r.FD)
	p.buf.WriteString(string(r.Kind))
	if r.Kind == ast.RedirHeredoc || r.Kind == ast.RedirHeredocTabs {
		p.buf.WriteString(r.Target.Raw())
		p.heredocs = append(p.heredocs, r)
		return
	}
	p.buf.WriteByte(' ')
	p.writeWord(r.Target, true)
}

// flushHeredocs writes out bodies queued by writeRedirect, each followed
// by its delimiter line (spec §4.9: "tab-indents heredoc bodies
// correctly" — bash itself requires heredoc delimiters to start at
// column 0, so the body is written unindented regardless of p.indent).
func (p *printer) flushHeredocs() {
	for _, r := range p.heredocs {
		body := r.HeredocBody
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		p.buf.WriteString(body)
		p.buf.WriteString(r.Target.Raw())
		p.buf.WriteByte('\n')
	}
	p.heredocs = nil
}

// quoteExpansions controls whether bare $var/${var} segments get
// re-quoted on emission (spec §4.9: "quotes all expansions unless
// emission is inside $(( … )) or [ … ]/[[ … ]] where word splitting is
// inert" — args/values default to quoted, command names never are).
func (p *printer) writeWord(w *ast.Word, quoteExpansions bool) {
	if w == nil {
		return
	}
	for _, seg := range w.Segments {
		p.writeSegment(seg, quoteExpansions)
	}
}

func (p *printer) writeSegment(seg ast.Segment, quote bool) {
	switch v := seg.(type) {
	case *ast.Literal:
		p.buf.WriteString(v.Value)
	case *ast.SingleQuoted:
		p.buf.WriteByte('\'')
		p.buf.WriteString(v.Value)
		p.buf.WriteByte('\'')
	case *ast.DoubleQuoted:
		p.buf.WriteByte('"')
		for _, part := range v.Parts {
			p.writeSegment(part, false)
		}
		p.buf.WriteByte('"')
	case *ast.AnsiCQuoted:
		p.buf.WriteString("$'")
		p.buf.WriteString(v.Value)
		p.buf.WriteByte('\'')
	case *ast.VarExpand:
		p.writeVarExpand(v, quote)
	case *ast.CmdSub:
		if quote {
			p.buf.WriteByte('"')
		}
		p.buf.WriteString("$(")
		inner := Emit(v.Body, WithIndent(p.indentWidth))
		// Emit always prepends this exact shebang line to a script; an
		// inner command substitution body can't legitimately start with
		// it, so trimming it back off here is safe.
		p.buf.WriteString(strings.TrimSuffix(strings.TrimPrefix(inner, "#!/bin/sh\n"), "\n"))
		p.buf.WriteByte(')')
		if quote {
			p.buf.WriteByte('"')
		}
	case *ast.ArithSub:
		p.buf.WriteString("$((")
		p.buf.WriteString(v.Expr)
		p.buf.WriteString("))")
	case *ast.ProcessSub:
		p.buf.WriteByte(v.Dir)
		p.buf.WriteByte('(')
		inner := Emit(v.Body, WithIndent(p.indentWidth))
		p.buf.WriteString(strings.TrimSuffix(strings.TrimPrefix(inner, "#!/bin/sh\n"), "\n"))
		p.buf.WriteByte(')')
	case *ast.BraceExpansion:
		p.buf.WriteString(v.Raw)
	case *ast.GlobChar:
		p.buf.WriteString(v.Value)
	case *ast.TildeExpansion:
		p.buf.WriteByte('~')
		p.buf.WriteString(v.User)
	}
}

func (p *printer) writeVarExpand(v *ast.VarExpand, quote bool) {
	if quote {
		p.buf.WriteByte('"')
	}
	if !v.Braced && v.Op == ast.OpNone {
		p.buf.WriteByte('$')
		p.buf.WriteString(v.Name)
	} else {
		p.buf.WriteString("${")
		p.buf.WriteString(v.Name)
		p.buf.WriteString(string(v.Op))
		p.buf.WriteString(v.Arg)
		p.buf.WriteByte('}')
	}
	if quote {
		p.buf.WriteByte('"')
	}
}

func (p *printer) ifClause(v *ast.If) {
	p.writeIndent()
	p.buf.WriteString("if ")
	p.item(v.Cond)
	p.rewindTrailingNewlineToSemicolon()
	p.buf.WriteString(" then\n")
	p.items(v.Then)
	for _, elif := range v.Elifs {
		p.writeIndent()
		p.buf.WriteString("elif ")
		p.item(elif.Cond)
		p.rewindTrailingNewlineToSemicolon()
		p.buf.WriteString(" then\n")
		p.items(elif.Body)
	}
	if v.Else != nil {
		p.writeIndent()
		p.buf.WriteString("else\n")
		p.items(v.Else)
	}
	p.writeIndent()
	p.buf.WriteString("fi\n")
}

// rewindTrailingNewlineToSemicolon replaces the newline that item() just
// wrote after a condition with "; " so `if cond; then` lands on one line,
// matching mvdan's inline-condition formatting.
func (p *printer) rewindTrailingNewlineToSemicolon() {
	b := p.buf.Bytes()
	if len(b) > 0 && b[len(b)-1] == '\n' {
		p.buf.Truncate(len(b) - 1)
		if len(b) < 2 || b[len(b)-2] != ';' {
			p.buf.WriteByte(';')
		}
	}
}

func (p *printer) forClause(v *ast.For) {
	p.writeIndent()
	if v.Arithmetic != "" {
		fmt.Fprintf(&p.buf, "for ((%s)); do\n", v.Arithmetic)
	} else {
		p.buf.WriteString("for ")
		p.buf.WriteString(v.Var)
		p.buf.WriteString(" in")
		for _, w := range v.Words {
			p.buf.WriteByte(' ')
			p.writeWord(w, true)
		}
		p.buf.WriteString("; do\n")
	}
	p.items(v.Body)
	p.writeIndent()
	p.buf.WriteString("done\n")
}

func (p *printer) whileClause(v *ast.While) {
	p.writeIndent()
	if v.Until {
		p.buf.WriteString("until ")
	} else {
		p.buf.WriteString("while ")
	}
	p.item(v.Cond)
	p.rewindTrailingNewlineToSemicolon()
	p.buf.WriteString(" do\n")
	p.items(v.Body)
	p.writeIndent()
	p.buf.WriteString("done\n")
}

func (p *printer) caseClause(v *ast.Case) {
	p.writeIndent()
	p.buf.WriteString("case ")
	p.writeWord(v.Scrutinee, true)
	p.buf.WriteString(" in\n")
	p.indent++
	for _, arm := range v.Arms {
		p.writeIndent()
		for i, pat := range arm.Patterns {
			if i > 0 {
				p.buf.WriteByte('|')
			}
			p.writeWord(pat, false)
		}
		p.buf.WriteString(")\n")
		p.items(arm.Body)
		p.writeIndent()
		p.buf.WriteString(string(arm.Terminator))
		p.buf.WriteByte('\n')
	}
	p.indent--
	p.writeIndent()
	p.buf.WriteString("esac\n")
}

func (p *printer) funcDecl(v *ast.Function) {
	p.writeIndent()
	if v.RsrvWord {
		p.buf.WriteString("function ")
		p.buf.WriteString(v.Name)
	} else {
		p.buf.WriteString(v.Name)
		p.buf.WriteString("()")
	}
	p.buf.WriteString(" {\n")
	p.items(v.Body)
	p.writeIndent()
	p.buf.WriteString("}\n")
}

func (p *printer) subshell(v *ast.Subshell) {
	p.writeIndent()
	p.buf.WriteString("(\n")
	p.items(v.Body)
	p.writeIndent()
	p.buf.WriteString(")\n")
}

func (p *printer) group(v *ast.Group) {
	p.writeIndent()
	p.buf.WriteString("{\n")
	p.items(v.Body)
	p.writeIndent()
	p.buf.WriteString("}\n")
}
