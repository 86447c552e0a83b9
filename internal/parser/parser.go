// Package parser turns a lexer.Lex token stream into an ast.Script (spec
// §4.2). Like the lexer, it never aborts on malformed input: syntax
// problems become diagnostics and the parser resynchronizes at the next
// statement boundary (spec §7, property P1) instead of unwinding.
package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/lexer"
	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/paiml/bashrs-sub018/internal/token"
)

// Parser consumes a flat token slice and builds the AST by recursive
// descent, the same shape the teacher's syntax.Parser wraps — except here
// the grammar and node set are bashrs's own (spec §3, §4.2).
type Parser struct {
	src   *source.Source
	toks  []token.Token
	pos   int
	diags []diag.Diagnostic
}

// Parse lexes and parses src in one call, returning the script, the raw
// token stream (useful to rules that need lexical context the AST drops),
// and every diagnostic collected along the way, lexer and parser alike.
func Parse(src *source.Source) (*ast.Script, []token.Token, []diag.Diagnostic) {
	toks, lexDiags := lexer.Lex(src)
	p := &Parser{src: src, toks: toks}

	var items []ast.Item
	if p.cur().Kind == token.Shebang {
		t := p.advance()
		items = append(items, &ast.ShebangItem{
			Base:        ast.Base{Sp: t.Span},
			Interpreter: shebangInterpreter(t.Lexeme),
		})
	}
	items = append(items, p.parseItemsUntil(isEnder())...)

	diags := make([]diag.Diagnostic, 0, len(lexDiags)+len(p.diags))
	diags = append(diags, lexDiags...)
	diags = append(diags, p.diags...)
	sort.SliceStable(diags, func(i, j int) bool { return diag.Less(diags[i], diags[j]) })

	return &ast.Script{Items: items, Sp: scriptSpan(toks)}, toks, diags
}

// shebangInterpreter extracts the interpreter text from a shebang
// lexeme. A reversed "!#/bin/bash" spelling keeps a leading "!" marker
// on the result so checkSC1084 can recognize and repair it.
func shebangInterpreter(lexeme string) string {
	if strings.HasPrefix(lexeme, "#!") {
		return strings.TrimSpace(strings.TrimPrefix(lexeme, "#!"))
	}
	if strings.HasPrefix(lexeme, "!#") {
		return "!" + strings.TrimSpace(strings.TrimPrefix(lexeme, "!#"))
	}
	return strings.TrimSpace(lexeme)
}

func scriptSpan(toks []token.Token) source.Span {
	if len(toks) == 0 {
		return source.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
	}
	first, last := toks[0].Span, toks[len(toks)-1].Span
	return source.Span{StartLine: first.StartLine, StartCol: first.StartCol, EndLine: last.EndLine, EndCol: last.EndCol}
}

func spanFromTo(a, b source.Span) source.Span {
	return source.Span{StartLine: a.StartLine, StartCol: a.StartCol, EndLine: b.EndLine, EndCol: b.EndCol}
}

// ---- token cursor -------------------------------------------------------

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx < 0 || idx >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) atWord(lexeme string) bool {
	t := p.cur()
	return t.Kind == token.Word && t.Lexeme == lexeme
}

func (p *Parser) atOp(lexeme string) bool {
	t := p.cur()
	return t.Kind == token.Operator && t.Lexeme == lexeme
}

func (p *Parser) skipNewlinesAndComments() {
	for p.cur().Kind == token.Newline || p.cur().Kind == token.Comment {
		p.advance()
	}
}

func (p *Parser) errorf(sp source.Span, format string, args ...interface{}) {
	p.diags = append(p.diags, diag.Diagnostic{
		Code:     "P1000",
		Severity: diag.Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     sp,
	})
}

func (p *Parser) expectWord(w string) token.Token {
	if p.atWord(w) {
		return p.advance()
	}
	p.errorf(p.cur().Span, "expected %q, found %q", w, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) expectOp(op string) token.Token {
	if p.atOp(op) {
		return p.advance()
	}
	p.errorf(p.cur().Span, "expected %q, found %q", op, p.cur().Lexeme)
	return p.cur()
}

// isEnder builds a predicate recognizing a set of reserved words/operators
// that close the enclosing construct, plus EOF unconditionally — the
// parser's panic-mode recovery always has EOF as a backstop (spec §4.2).
func isEnder(words ...string) func(token.Token) bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return func(t token.Token) bool {
		if t.Kind == token.EOF {
			return true
		}
		if (t.Kind == token.Word || t.Kind == token.Operator) && set[t.Lexeme] {
			return true
		}
		return false
	}
}

// ---- item sequences ------------------------------------------------------

// parseItemsUntil parses items (statements, and standalone comments) until
// isEnder reports true for the current token, without consuming it.
func (p *Parser) parseItemsUntil(done func(token.Token) bool) []ast.Item {
	var items []ast.Item
	for !done(p.cur()) {
		switch p.cur().Kind {
		case token.Newline:
			p.advance()
		case token.Comment:
			t := p.advance()
			items = append(items, &ast.CommentItem{Base: ast.Base{Sp: t.Span}, Text: t.Lexeme})
		case token.EOF:
			return items
		default:
			items = append(items, p.parseList(done))
		}
	}
	return items
}

// parseList parses a `;`/`&`/`&&`/`||`-joined sequence of pipelines up to
// the next newline, comment, EOF, or ender (spec §3's List node).
func (p *Parser) parseList(done func(token.Token) bool) ast.Item {
	if done(p.cur()) || p.cur().Kind == token.Newline || p.cur().Kind == token.Comment || p.cur().Kind == token.EOF {
		return &ast.List{Base: ast.Base{Sp: p.cur().Span}}
	}

	start := p.cur().Span
	var elems []ast.ListElem
	for {
		item := p.parsePipeline()
		conn := ast.ConnNone
		switch {
		case p.atOp(";"):
			p.advance()
			conn = ast.ConnSequence
		case p.atOp("&"):
			p.advance()
			conn = ast.ConnBackground
		case p.atOp("&&"):
			p.advance()
			conn = ast.ConnAnd
		case p.atOp("||"):
			p.advance()
			conn = ast.ConnOr
		}
		elems = append(elems, ast.ListElem{Item: item, Connector: conn})

		switch conn {
		case ast.ConnAnd, ast.ConnOr:
			p.skipNewlinesAndComments()
			continue
		case ast.ConnSequence, ast.ConnBackground:
			if done(p.cur()) || p.cur().Kind == token.Newline || p.cur().Kind == token.Comment || p.cur().Kind == token.EOF {
				goto finished
			}
			continue
		}
		break
	}
finished:
	end := elems[len(elems)-1].Item.Span()
	if len(elems) == 1 && elems[0].Connector == ast.ConnNone {
		return elems[0].Item
	}
	return &ast.List{Base: ast.Base{Sp: spanFromTo(start, end)}, Elems: elems}
}

// parsePipeline parses [!] stage (| stage)* (spec §3's Pipeline node).
func (p *Parser) parsePipeline() ast.Item {
	start := p.cur().Span
	negated := false
	if p.atWord("!") {
		p.advance()
		negated = true
	}
	stages := []ast.Item{p.parseStage()}
	for p.atOp("|") {
		p.advance()
		p.skipNewlinesAndComments()
		stages = append(stages, p.parseStage())
	}
	if !negated && len(stages) == 1 {
		return stages[0]
	}
	end := stages[len(stages)-1].Span()
	return &ast.Pipeline{Base: ast.Base{Sp: spanFromTo(start, end)}, Stages: stages, Negated: negated}
}

// parseStage dispatches to a control structure or falls back to a simple
// command — the one place that decides whether a leading word is a
// keyword (spec §4.2, property P3: keyword-ness is purely positional).
func (p *Parser) parseStage() ast.Item {
	t := p.cur()
	switch {
	case t.Kind == token.Word && t.Lexeme == "if":
		return p.parseIf()
	case t.Kind == token.Word && t.Lexeme == "for":
		return p.parseFor()
	case t.Kind == token.Word && t.Lexeme == "while":
		return p.parseWhile(false)
	case t.Kind == token.Word && t.Lexeme == "until":
		return p.parseWhile(true)
	case t.Kind == token.Word && t.Lexeme == "case":
		return p.parseCase()
	case t.Kind == token.Word && t.Lexeme == "function":
		return p.parseFunction(true)
	case t.Kind == token.Operator && t.Lexeme == "{":
		return p.parseGroup()
	case t.Kind == token.Operator && t.Lexeme == "(":
		return p.parseSubshell()
	case t.Kind == token.Word && !token.IsKeyword(t.Lexeme) &&
		p.peekAt(1).Kind == token.Operator && p.peekAt(1).Lexeme == "(" &&
		p.peekAt(2).Kind == token.Operator && p.peekAt(2).Lexeme == ")":
		return p.parseFunction(false)
	default:
		return p.parseSimpleCommand()
	}
}

// ---- control structures --------------------------------------------------

func (p *Parser) parseIf() ast.Item {
	start := p.advance().Span // "if"
	cond := p.parseList(isEnder("then"))
	p.skipNewlinesAndComments()
	p.expectWord("then")
	thenBody := p.parseItemsUntil(isEnder("elif", "else", "fi"))

	var elifs []ast.ElIf
	for p.atWord("elif") {
		p.advance()
		c := p.parseList(isEnder("then"))
		p.skipNewlinesAndComments()
		p.expectWord("then")
		b := p.parseItemsUntil(isEnder("elif", "else", "fi"))
		elifs = append(elifs, ast.ElIf{Cond: c, Body: b})
	}

	var elseBody []ast.Item
	if p.atWord("else") {
		p.advance()
		elseBody = p.parseItemsUntil(isEnder("fi"))
	}

	end := p.cur().Span
	p.expectWord("fi")
	return &ast.If{Base: ast.Base{Sp: spanFromTo(start, end)}, Cond: cond, Then: thenBody, Elifs: elifs, Else: elseBody}
}

func (p *Parser) parseFor() ast.Item {
	start := p.advance().Span // "for"

	if p.atOp("(") && p.peekAt(1).Kind == token.Operator && p.peekAt(1).Lexeme == "(" {
		p.advance()
		p.advance()
		var b strings.Builder
		for !(p.atOp(")") && p.peekAt(1).Kind == token.Operator && p.peekAt(1).Lexeme == ")") && p.cur().Kind != token.EOF {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(p.advance().Lexeme)
		}
		if p.atOp(")") {
			p.advance()
		}
		if p.atOp(")") {
			p.advance()
		}
		if p.atOp(";") {
			p.advance()
		}
		p.skipNewlinesAndComments()
		p.expectWord("do")
		body := p.parseItemsUntil(isEnder("done"))
		end := p.cur().Span
		p.expectWord("done")
		return &ast.For{Base: ast.Base{Sp: spanFromTo(start, end)}, Arithmetic: b.String(), Body: body}
	}

	name := p.advance().Lexeme
	var words []*ast.Word
	if p.atOp(";") {
		p.advance()
	} else if p.atWord("in") {
		p.advance()
		for isWordLikeKind(p.cur().Kind) && !isStmtEnd(p.cur()) {
			words = append(words, p.parseWordRun())
		}
		if p.atOp(";") {
			p.advance()
		}
	}
	p.skipNewlinesAndComments()
	p.expectWord("do")
	body := p.parseItemsUntil(isEnder("done"))
	end := p.cur().Span
	p.expectWord("done")
	return &ast.For{Base: ast.Base{Sp: spanFromTo(start, end)}, Var: name, Words: words, Body: body}
}

func (p *Parser) parseWhile(until bool) ast.Item {
	start := p.advance().Span // "while"/"until"
	cond := p.parseList(isEnder("do"))
	p.skipNewlinesAndComments()
	p.expectWord("do")
	body := p.parseItemsUntil(isEnder("done"))
	end := p.cur().Span
	p.expectWord("done")
	return &ast.While{Base: ast.Base{Sp: spanFromTo(start, end)}, Cond: cond, Body: body, Until: until}
}

func (p *Parser) parseCase() ast.Item {
	start := p.advance().Span // "case"
	scrutinee := p.parseWordRun()
	p.skipNewlinesAndComments()
	p.expectWord("in")
	p.skipNewlinesAndComments()

	var arms []ast.CaseArm
	for !p.atWord("esac") && p.cur().Kind != token.EOF {
		if p.cur().Kind == token.Newline || p.cur().Kind == token.Comment {
			p.advance()
			continue
		}
		if p.atOp("(") {
			p.advance()
		}
		pats := []*ast.Word{p.parseWordRun()}
		for p.atOp("|") {
			p.advance()
			pats = append(pats, p.parseWordRun())
		}
		p.expectOp(")")
		body := p.parseItemsUntil(isEnder(";;", ";&", ";;&", "esac"))
		term := ast.TermBreak
		switch {
		case p.atOp(";;"):
			p.advance()
		case p.atOp(";&"):
			p.advance()
			term = ast.TermFallthru
		case p.atOp(";;&"):
			p.advance()
			term = ast.TermContinue
		}
		arms = append(arms, ast.CaseArm{Patterns: pats, Body: body, Terminator: term})
		p.skipNewlinesAndComments()
	}
	end := p.cur().Span
	p.expectWord("esac")
	return &ast.Case{Base: ast.Base{Sp: spanFromTo(start, end)}, Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseFunction(hasKeyword bool) ast.Item {
	start := p.cur().Span
	if hasKeyword {
		p.advance()
	}
	name := p.advance().Lexeme
	if p.atOp("(") {
		p.advance()
		p.expectOp(")")
	}
	p.skipNewlinesAndComments()

	var body []ast.Item
	if p.atOp("{") {
		p.advance()
		body = p.parseItemsUntil(isEnder("}"))
		p.expectOp("}")
	} else {
		body = []ast.Item{p.parseStage()}
	}
	end := p.cur().Span
	return &ast.Function{Base: ast.Base{Sp: spanFromTo(start, end)}, Name: name, Body: body, RsrvWord: hasKeyword}
}

func (p *Parser) parseGroup() ast.Item {
	start := p.advance().Span // "{"
	body := p.parseItemsUntil(isEnder("}"))
	end := p.cur().Span
	p.expectOp("}")
	return &ast.Group{Base: ast.Base{Sp: spanFromTo(start, end)}, Body: body}
}

func (p *Parser) parseSubshell() ast.Item {
	start := p.advance().Span // "("
	body := p.parseItemsUntil(isEnder(")"))
	end := p.cur().Span
	p.expectOp(")")
	return &ast.Subshell{Base: ast.Base{Sp: spanFromTo(start, end)}, Body: body}
}

// ---- simple commands, assignments, redirections --------------------------

func isWordLikeKind(k token.Kind) bool {
	return k == token.Word || k == token.AssignmentWord || k == token.String
}

// isStmtEnd reports whether t closes a simple command's argument list.
// Reserved words are only treated as boundaries here because they can
// never legitimately continue an argument list that's already underway
// (spec §4.2, property P3 — keyword-ness is positional, but an in-progress
// command's own position never re-admits one).
func isStmtEnd(t token.Token) bool {
	switch t.Kind {
	case token.Newline, token.EOF, token.Comment:
		return true
	case token.Operator:
		switch t.Lexeme {
		case ";", "&", "&&", "||", "|", ")", "}", ";;", ";&", ";;&":
			return true
		}
	case token.Word:
		switch t.Lexeme {
		case "then", "fi", "do", "done", "esac", "else", "elif":
			return true
		}
	}
	return false
}

func isRedirOp(lexeme string) bool {
	switch lexeme {
	case "<", ">", ">>", "<<", "<<-", "<<<", "&>", ">|", "<&":
		return true
	default:
		return false
	}
}

func adjacent(a, b source.Span) bool {
	return a.EndLine == b.StartLine && a.EndCol == b.StartCol
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isScopeKeyword(s string) bool {
	switch s {
	case "export", "local", "declare", "readonly", "typeset":
		return true
	default:
		return false
	}
}

func scopeOf(s string) ast.AssignScope {
	switch s {
	case "local":
		return ast.ScopeLocal
	case "declare":
		return ast.ScopeDeclare
	case "readonly":
		return ast.ScopeReadonly
	case "export":
		return ast.ScopeExport
	case "typeset":
		return ast.ScopeTypeset
	default:
		return ast.ScopePlain
	}
}

// assignmentFromToken splits an AssignmentWord lexeme ("NAME=value" or
// "NAME+=value") recognized by the lexer (spec §4.1) into an Assignment
// node, re-parsing the value half through the same word grammar ordinary
// arguments go through.
func assignmentFromToken(t token.Token, scope ast.AssignScope) *ast.Assignment {
	lex := t.Lexeme
	kind := ast.AssignPlain
	var name, valueRaw string
	if idx := strings.Index(lex, "+="); idx >= 0 {
		name, valueRaw, kind = lex[:idx], lex[idx+2:], ast.AssignAppend
	} else if idx := strings.Index(lex, "="); idx >= 0 {
		name, valueRaw = lex[:idx], lex[idx+1:]
	} else {
		name = lex
	}
	return &ast.Assignment{
		Base:  ast.Base{Sp: t.Span},
		Name:  name,
		Value: parseWord(valueRaw, t.Span),
		Kind:  kind,
		Scope: scope,
	}
}

// parseWordRun merges one or more adjacent Word/String tokens with no
// intervening whitespace into a single ast.Word — shells treat "a"b$c as
// one field, but the lexer hands back three separate tokens for it.
func (p *Parser) parseWordRun() *ast.Word {
	first := p.cur()
	var raw strings.Builder
	last := first.Span
	for isWordLikeKind(p.cur().Kind) {
		t := p.cur()
		if raw.Len() > 0 && !adjacent(last, t.Span) {
			break
		}
		raw.WriteString(rawTextOf(t))
		last = t.Span
		p.advance()
	}
	return parseWord(raw.String(), spanFromTo(first.Span, last))
}

func rawTextOf(t token.Token) string {
	if t.Kind != token.String {
		return t.Lexeme
	}
	switch t.StringKind {
	case token.SingleQuoted:
		return "'" + t.Lexeme + "'"
	case token.DoubleQuoted:
		return "\"" + t.Lexeme + "\""
	case token.DollarSingleQuoted:
		return "$'" + t.Lexeme + "'"
	default:
		return t.Lexeme
	}
}

func (p *Parser) parseRedir() *ast.Redir {
	t := p.advance()
	kind := ast.RedirKind(t.Lexeme)
	r := &ast.Redir{Base: ast.Base{Sp: t.Span}, Kind: kind}

	if kind == ast.RedirHeredoc || kind == ast.RedirHeredocTabs {
		plain, quoted, sp := p.parseHeredocDelimiter()
		r.Target = parseWord(plain, sp)
		r.HeredocQuoted = quoted
		r.HeredocBody = p.consumeHeredocBody(plain, kind == ast.RedirHeredocTabs)
	} else {
		r.Target = p.parseWordRun()
	}
	r.Sp = spanFromTo(t.Span, r.Target.Span())
	return r
}

// parseHeredocDelimiter reads the word following << or <<- and returns its
// literal text with any quoting stripped, whether any part of it was
// quoted (which suppresses expansion inside the heredoc body, spec §3),
// and the span it covered.
func (p *Parser) parseHeredocDelimiter() (plain string, quoted bool, sp source.Span) {
	start := p.cur().Span
	last := start
	var b strings.Builder
	for isWordLikeKind(p.cur().Kind) {
		t := p.cur()
		if b.Len() > 0 && !adjacent(last, t.Span) {
			break
		}
		if t.Kind == token.String {
			quoted = true
		}
		b.WriteString(t.Lexeme)
		last = t.Span
		p.advance()
	}
	return b.String(), quoted, spanFromTo(start, last)
}

// consumeHeredocBody reads raw source lines following the heredoc operator
// up to (and past) the delimiter line, then fast-forwards the token cursor
// over whatever the lexer tokenized for that span — the lexer (spec §4.1)
// doesn't special-case heredoc bodies, so this is the parser's job.
func (p *Parser) consumeHeredocBody(delim string, stripTabs bool) string {
	bodyStart := p.lastConsumedLine() + 1
	endLine := bodyStart - 1
	var lines []string
	for ln := bodyStart; ln <= p.src.LineCount(); ln++ {
		text := p.src.Line(ln)
		trimmed := text
		if stripTabs {
			trimmed = strings.TrimLeft(text, "\t")
		}
		endLine = ln
		if trimmed == delim {
			break
		}
		lines = append(lines, text)
	}
	for p.pos < len(p.toks)-1 && p.toks[p.pos].Span.StartLine <= endLine {
		p.pos++
	}
	return strings.Join(lines, "\n")
}

func (p *Parser) lastConsumedLine() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.EndLine
}

func (p *Parser) parseSimpleCommand() ast.Item {
	start := p.cur().Span

	var env []*ast.Assignment
	for p.cur().Kind == token.AssignmentWord {
		env = append(env, assignmentFromToken(p.advance(), ast.ScopePlain))
	}

	if p.cur().Kind == token.Word && isScopeKeyword(p.cur().Lexeme) &&
		p.peekAt(1).Kind == token.AssignmentWord && isStmtEnd(p.peekAt(2)) {
		scopeTok := p.advance()
		valTok := p.advance()
		a := assignmentFromToken(valTok, scopeOf(scopeTok.Lexeme))
		a.Sp = spanFromTo(scopeTok.Span, valTok.Span)
		return a
	}

	if len(env) > 0 && isStmtEnd(p.cur()) {
		return &ast.Command{Base: ast.Base{Sp: spanFromTo(start, env[len(env)-1].Sp)}, Env: env}
	}

	var name *ast.Word
	var args []*ast.Word
	var redirs []*ast.Redir
	if isWordLikeKind(p.cur().Kind) {
		name = p.parseWordRun()
	}

	for {
		t := p.cur()
		switch {
		case isStmtEnd(t):
			goto done
		case t.Kind == token.Operator && isRedirOp(t.Lexeme):
			redirs = append(redirs, p.parseRedir())
		case t.Kind == token.Word && allDigits(t.Lexeme) &&
			p.peekAt(1).Kind == token.Operator && isRedirOp(p.peekAt(1).Lexeme) && adjacent(t.Span, p.peekAt(1).Span):
			fd := p.advance().Lexeme
			r := p.parseRedir()
			r.FD = fd
			redirs = append(redirs, r)
		case isWordLikeKind(t.Kind):
			args = append(args, p.parseWordRun())
		default:
			goto done
		}
	}
done:
	end := start
	if len(redirs) > 0 {
		end = redirs[len(redirs)-1].Sp
	} else if len(args) > 0 {
		end = args[len(args)-1].Span()
	} else if name != nil {
		end = name.Span()
	} else if len(env) > 0 {
		end = env[len(env)-1].Sp
	}
	return &ast.Command{Base: ast.Base{Sp: spanFromTo(start, end)}, Env: env, Name: name, Args: args, Redirs: redirs}
}
