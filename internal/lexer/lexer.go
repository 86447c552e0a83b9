// Package lexer turns source text into a flat token stream (spec §4.1).
// It never fails: lexical problems become diagnostics carried alongside the
// token stream, and the lexer does its best to keep scanning afterward so
// the parser downstream always has *something* to work with (spec §7,
// property P1).
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/paiml/bashrs-sub018/internal/token"
)

// Lexer scans a Source into Tokens in a single forward pass.
type Lexer struct {
	src   *source.Source
	runes []rune
	pos   int // index into runes
	line  int
	col   int

	diags []diag.Diagnostic
}

// New constructs a Lexer over src. Lex() drives it to completion.
func New(src *source.Source) *Lexer {
	return &Lexer{
		src:   src,
		runes: []rune(src.Text()),
		pos:   0,
		line:  1,
		col:   1,
	}
}

// Lex runs the lexer to EOF and returns the token stream plus any
// lexer-originated diagnostics (unterminated quotes/heredocs, Unicode
// hazards, invalid UTF-8).
func Lex(src *source.Source) ([]token.Token, []diag.Diagnostic) {
	l := New(src)
	return l.run()
}

func (l *Lexer) run() ([]token.Token, []diag.Diagnostic) {
	var toks []token.Token

	l.checkBOMAndHazards()

	if (l.peekString("#!") || l.peekString("!#")) && l.line == 1 {
		toks = append(toks, l.lexShebang())
	}

	for {
		tok, ok := l.next()
		if ok {
			toks = append(toks, tok)
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, l.diags
}

// checkBOMAndHazards scans the raw source for the lexer-level Unicode
// hazard diagnostics named in spec §4.1: NBSP (SC1018), curly quotes
// (SC1110/SC1111), en/em dash (SC1100), CR line endings (SC1017), BOM
// (SC1082). These are advisory and never change tokenization.
func (l *Lexer) checkBOMAndHazards() {
	text := l.src.Text()
	if !ValidUTF8(text) {
		l.addDiag("SC1112", diag.Error, "file is not valid UTF-8; lexing continues on a best-effort basis", 1, 1, 1, 1)
	}
	if strings.HasPrefix(text, "\ufeff") {
		l.addDiag("SC1082", diag.Info, "file has a byte order mark (BOM); some tools choke on it", 1, 1, 1, 1)
	}
	for i, ln := range strings.Split(text, "\n") {
		lineNo := i + 1
		if strings.Contains(ln, "\r") {
			l.addDiag("SC1017", diag.Info, "line has a carriage return (CRLF line ending)", lineNo, 1, lineNo, 1)
		}
		if strings.ContainsRune(ln, ' ') {
			l.addDiag("SC1018", diag.Warning, "non-breaking space used instead of a regular space", lineNo, 1, lineNo, 1)
		}
		if strings.ContainsAny(ln, "‘’") {
			l.addDiag("SC1110", diag.Warning, "curly single quote used where a straight quote was likely intended", lineNo, 1, lineNo, 1)
		}
		if strings.ContainsAny(ln, "“”") {
			l.addDiag("SC1111", diag.Warning, "curly double quote used where a straight quote was likely intended", lineNo, 1, lineNo, 1)
		}
		if strings.ContainsAny(ln, "–—") {
			l.addDiag("SC1100", diag.Warning, "unicode dash used where a hyphen was likely intended", lineNo, 1, lineNo, 1)
		}
		if strings.HasPrefix(strings.TrimRight(ln, " \t"), " ") && i == 0 && strings.Contains(ln, "#!") {
			l.addDiag("SC1114", diag.Warning, "leading whitespace before shebang", lineNo, 1, lineNo, 1)
		}
	}
}

func (l *Lexer) addDiag(code string, sev diag.Severity, msg string, sl, sc, el, ec int) {
	l.diags = append(l.diags, diag.Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  msg,
		Span:     source.Span{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
	})
}

func (l *Lexer) peekString(s string) bool {
	rs := []rune(s)
	if l.pos+len(rs) > len(l.runes) {
		return false
	}
	for i, r := range rs {
		if l.runes[l.pos+i] != r {
			return false
		}
	}
	return true
}

func (l *Lexer) eof() bool { return l.pos >= len(l.runes) }

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}
	return l.runes[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.runes) {
		return 0
	}
	return l.runes[l.pos+off]
}

func (l *Lexer) advance() rune {
	r := l.runes[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) here() (line, col int) { return l.line, l.col }

func (l *Lexer) lexShebang() token.Token {
	sl, sc := l.here()
	var b strings.Builder
	for !l.eof() && l.peek() != '\n' {
		b.WriteRune(l.advance())
	}
	return token.Token{
		Kind:   token.Shebang,
		Lexeme: b.String(),
		Span:   source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col},
	}
}

// next scans and returns the next token. ok is false only for whitespace
// that produced no token (the caller loops again).
func (l *Lexer) next() (token.Token, bool) {
	l.skipInlineSpace()

	if l.eof() {
		sl, sc := l.here()
		return token.Token{Kind: token.EOF, Span: source.Span{StartLine: sl, StartCol: sc, EndLine: sl, EndCol: sc}}, true
	}

	sl, sc := l.here()

	switch {
	case l.peek() == '\n':
		l.advance()
		return token.Token{Kind: token.Newline, Lexeme: "\n", Span: source.Span{StartLine: sl, StartCol: sc, EndLine: sl, EndCol: sc + 1}}, true
	case l.peek() == '\\' && l.peekAt(1) == '\n':
		// Line continuation: joins logical lines outside quotes (spec §4.1).
		l.advance()
		l.advance()
		return token.Token{}, false
	case l.peek() == '#':
		return l.lexComment(), true
	case l.peek() == '\'':
		return l.lexSingleQuoted(), true
	case l.peek() == '"':
		return l.lexDoubleQuoted(), true
	case l.peek() == '$' && l.peekAt(1) == '\'':
		return l.lexAnsiC(), true
	case isOperatorStart(l.peek()):
		return l.lexOperator(), true
	default:
		return l.lexWord(), true
	}
}

func (l *Lexer) skipInlineSpace() {
	for !l.eof() && (l.peek() == ' ' || l.peek() == '\t') {
		l.advance()
	}
}

func (l *Lexer) lexComment() token.Token {
	sl, sc := l.here()
	var b strings.Builder
	for !l.eof() && l.peek() != '\n' {
		b.WriteRune(l.advance())
	}
	return token.Token{Kind: token.Comment, Lexeme: b.String(), Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col}}
}

func (l *Lexer) lexSingleQuoted() token.Token {
	sl, sc := l.here()
	l.advance() // opening '
	var b strings.Builder
	closed := false
	for !l.eof() {
		r := l.peek()
		if r == '\'' {
			l.advance()
			closed = true
			break
		}
		b.WriteRune(l.advance())
	}
	if !closed {
		l.addDiag("SC1078", diag.Error, "unterminated single-quoted string", sl, sc, l.line, l.col)
	}
	return token.Token{
		Kind: token.String, StringKind: token.SingleQuoted, Quoting: token.InSingleQuoted,
		Lexeme: b.String(), Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col},
	}
}

func (l *Lexer) lexDoubleQuoted() token.Token {
	sl, sc := l.here()
	l.advance() // opening "
	var b strings.Builder
	closed := false
	for !l.eof() {
		r := l.peek()
		if r == '"' {
			l.advance()
			closed = true
			break
		}
		if r == '\\' {
			b.WriteRune(l.advance())
			if !l.eof() {
				b.WriteRune(l.advance())
			}
			continue
		}
		b.WriteRune(l.advance())
	}
	if !closed {
		l.addDiag("SC1078", diag.Error, "unterminated double-quoted string", sl, sc, l.line, l.col)
	}
	return token.Token{
		Kind: token.String, StringKind: token.DoubleQuoted, Quoting: token.InDoubleQuoted,
		Lexeme: b.String(), Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col},
	}
}

func (l *Lexer) lexAnsiC() token.Token {
	sl, sc := l.here()
	l.advance() // $
	l.advance() // '
	var b strings.Builder
	closed := false
	for !l.eof() {
		r := l.peek()
		if r == '\'' {
			l.advance()
			closed = true
			break
		}
		if r == '\\' {
			b.WriteRune(l.advance())
			if !l.eof() {
				b.WriteRune(l.advance())
			}
			continue
		}
		b.WriteRune(l.advance())
	}
	if !closed {
		l.addDiag("SC1078", diag.Error, "unterminated $'...' string", sl, sc, l.line, l.col)
	}
	return token.Token{
		Kind: token.String, StringKind: token.DollarSingleQuoted, Quoting: token.InSingleQuoted,
		Lexeme: b.String(), Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col},
	}
}

var multiCharOps = []string{
	";;&", ";&", ";;", "&&", "||", "<<-", "<<<", "<<", ">>", "&>", ">|", "<&", "&", "|", "<", ">", ";", "(", ")", "{", "}",
}

func isOperatorStart(r rune) bool {
	switch r {
	case ';', '&', '|', '<', '>', '(', ')', '{', '}':
		return true
	default:
		return false
	}
}

func (l *Lexer) lexOperator() token.Token {
	sl, sc := l.here()
	for _, op := range multiCharOps {
		if l.peekString(op) {
			for range op {
				l.advance()
			}
			return token.Token{Kind: token.Operator, Lexeme: op, Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col}}
		}
	}
	r := l.advance()
	return token.Token{Kind: token.Operator, Lexeme: string(r), Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col}}
}

// lexWord scans an unquoted word, which may itself embed quoted runs
// (e.g. foo"bar"baz) and $-expansions; the raw lexeme is retained and the
// parser re-derives Segments from it. Word scanning stops at whitespace,
// an operator character, or a newline, tracking nested () / {} balance so
// $(...) and ${...} don't terminate the word early.
func (l *Lexer) lexWord() token.Token {
	sl, sc := l.here()
	var b strings.Builder
	depth := 0
	isAssignment := false
	sawEquals := false
	for !l.eof() {
		r := l.peek()
		if depth == 0 {
			if r == ' ' || r == '\t' || r == '\n' {
				break
			}
			if isOperatorStart(r) && !((r == '(' || r == '{') && strings.HasSuffix(b.String(), "$")) {
				break
			}
		}
		switch r {
		case '\'':
			b.WriteRune(l.advance())
			for !l.eof() && l.peek() != '\'' {
				b.WriteRune(l.advance())
			}
			if !l.eof() {
				b.WriteRune(l.advance())
			}
			continue
		case '"':
			b.WriteRune(l.advance())
			for !l.eof() && l.peek() != '"' {
				if l.peek() == '\\' {
					b.WriteRune(l.advance())
					if !l.eof() {
						b.WriteRune(l.advance())
					}
					continue
				}
				b.WriteRune(l.advance())
			}
			if !l.eof() {
				b.WriteRune(l.advance())
			}
			continue
		case '\\':
			b.WriteRune(l.advance())
			if !l.eof() {
				b.WriteRune(l.advance())
			}
			continue
		case '(', '{':
			if r == '(' {
				depth++
			} else if b.Len() > 0 && strings.HasSuffix(b.String(), "$") {
				depth++
			}
			b.WriteRune(l.advance())
			continue
		case ')', '}':
			if depth > 0 {
				depth--
			}
			b.WriteRune(l.advance())
			continue
		case '=':
			if depth == 0 && !sawEquals && b.Len() > 0 && isValidAssignmentPrefix(b.String()) {
				sawEquals = true
				isAssignment = true
			}
			b.WriteRune(l.advance())
			continue
		default:
			b.WriteRune(l.advance())
		}
	}
	kind := token.Word
	if isAssignment {
		kind = token.AssignmentWord
	}
	return token.Token{Kind: kind, Lexeme: b.String(), Span: source.Span{StartLine: sl, StartCol: sc, EndLine: l.line, EndCol: l.col}}
}

func isValidAssignmentPrefix(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		if i > 0 && (r == '[' || r == ']') {
			continue // crude allowance for arr[0]=...
		}
		return false
	}
	return true
}

// ValidUTF8 reports whether src's raw bytes decode cleanly, per the
// lexer's obligation (spec §9) to reject invalid UTF-8 with a diagnostic
// instead of panicking downstream.
func ValidUTF8(text string) bool {
	return utf8.ValidString(text)
}
