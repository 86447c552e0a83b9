package parser

import (
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/source"
)

// wordScanner re-derives ast.Segments from a Word token's raw lexeme. The
// lexer already validated bracket/quote balance while scanning the word as
// one unit (spec §4.1); this second, narrower pass exists because the
// lexer's job is tokenization, not the spec's richer Segment model (§3) —
// splitting those concerns keeps each pass small, the same way the
// teacher's shellformat.go separates syntax.Parser from its own print-time
// node walk.
type wordScanner struct {
	runes []rune
	pos   int
	line  int
	col   int
}

func parseWord(lexeme string, sp source.Span) *ast.Word {
	ws := &wordScanner{runes: []rune(lexeme), line: sp.StartLine, col: sp.StartCol}
	segs := ws.scanUntil(-1)
	return &ast.Word{Base: ast.Base{Sp: sp}, Segments: segs}
}

func (s *wordScanner) here() (int, int) { return s.line, s.col }

func (s *wordScanner) eof() bool { return s.pos >= len(s.runes) }

func (s *wordScanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.runes[s.pos]
}

func (s *wordScanner) peekAt(n int) rune {
	if s.pos+n >= len(s.runes) {
		return 0
	}
	return s.runes[s.pos+n]
}

func (s *wordScanner) advance() rune {
	r := s.runes[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *wordScanner) span(sl, sc int) source.Span {
	el, ec := s.here()
	if el < sl || (el == sl && ec < sc) {
		el, ec = sl, sc
	}
	return source.Span{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec}
}

// scanUntil scans segments until EOF (closer == -1) or the given closing
// rune is seen (not consumed).
func (s *wordScanner) scanUntil(closer rune) []ast.Segment {
	var segs []ast.Segment
	var lit strings.Builder
	litStartLine, litStartCol := s.here()

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, ast.NewLiteral(s.span(litStartLine, litStartCol), lit.String()))
			lit.Reset()
		}
	}

	for !s.eof() {
		r := s.peek()
		if closer != -1 && r == closer {
			break
		}
		switch r {
		case '\'':
			flush()
			segs = append(segs, s.scanSingleQuoted())
			litStartLine, litStartCol = s.here()
		case '"':
			flush()
			segs = append(segs, s.scanDoubleQuoted())
			litStartLine, litStartCol = s.here()
		case '`':
			flush()
			segs = append(segs, s.scanBacktickCmdSub())
			litStartLine, litStartCol = s.here()
		case '~':
			if lit.Len() == 0 {
				flush()
				segs = append(segs, s.scanTilde())
				litStartLine, litStartCol = s.here()
				continue
			}
			lit.WriteRune(s.advance())
		case '$':
			flush()
			seg := s.scanDollar()
			if seg != nil {
				segs = append(segs, seg)
			}
			litStartLine, litStartCol = s.here()
		case '*', '?', '[':
			flush()
			sl, sc := s.here()
			lit.WriteRune(s.advance())
			segs = append(segs, ast.NewGlobChar(s.span(sl, sc), lit.String()))
			lit.Reset()
			litStartLine, litStartCol = s.here()
		case '{':
			if looksLikeBraceExpansion(s.runes[s.pos:]) {
				flush()
				segs = append(segs, s.scanBraceExpansion())
				litStartLine, litStartCol = s.here()
				continue
			}
			lit.WriteRune(s.advance())
		case '\\':
			s.advance()
			if !s.eof() {
				lit.WriteRune(s.advance())
			}
		default:
			lit.WriteRune(s.advance())
		}
	}
	flush()
	return segs
}

func looksLikeBraceExpansion(rest []rune) bool {
	depth := 0
	sawComma := false
	sawDotDot := false
	for i, r := range rest {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return sawComma || sawDotDot
			}
		case ',':
			if depth == 1 {
				sawComma = true
			}
		case '.':
			if depth == 1 && i+1 < len(rest) && rest[i+1] == '.' {
				sawDotDot = true
			}
		}
	}
	return false
}

func (s *wordScanner) scanBraceExpansion() ast.Segment {
	sl, sc := s.here()
	var b strings.Builder
	depth := 0
	for !s.eof() {
		r := s.peek()
		b.WriteRune(s.advance())
		if r == '{' {
			depth++
		} else if r == '}' {
			depth--
			if depth == 0 {
				break
			}
		}
	}
	return ast.NewBraceExpansion(s.span(sl, sc), b.String())
}

func (s *wordScanner) scanTilde() ast.Segment {
	sl, sc := s.here()
	s.advance() // ~
	var user strings.Builder
	for !s.eof() {
		r := s.peek()
		if r == '/' || r == ':' || r == ' ' || r == '\t' {
			break
		}
		if !isWordRune(r) {
			break
		}
		user.WriteRune(s.advance())
	}
	return ast.NewTildeExpansion(s.span(sl, sc), user.String())
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (s *wordScanner) scanSingleQuoted() ast.Segment {
	sl, sc := s.here()
	s.advance() // '
	var b strings.Builder
	for !s.eof() && s.peek() != '\'' {
		b.WriteRune(s.advance())
	}
	if !s.eof() {
		s.advance()
	}
	return ast.NewSingleQuoted(s.span(sl, sc), b.String())
}

func (s *wordScanner) scanDoubleQuoted() ast.Segment {
	sl, sc := s.here()
	s.advance() // "
	inner := &wordScanner{runes: s.runes[s.pos:], line: s.line, col: s.col}
	parts := inner.scanUntil('"')
	// advance outer scanner by however much inner consumed
	for inner.pos > 0 {
		s.advance()
		inner.pos--
	}
	if !s.eof() && s.peek() == '"' {
		s.advance()
	}
	return ast.NewDoubleQuoted(s.span(sl, sc), parts)
}

// scanDollar handles $var, ${...}, $(...), $((...)) and special params.
func (s *wordScanner) scanDollar() ast.Segment {
	sl, sc := s.here()
	s.advance() // $
	if s.eof() {
		return ast.NewLiteral(s.span(sl, sc), "$")
	}
	switch {
	case s.peek() == '(' && s.peekAt(1) == '(':
		return s.scanArith(sl, sc)
	case s.peek() == '(':
		return s.scanCmdSub(sl, sc, false)
	case s.peek() == '{':
		return s.scanBraced(sl, sc)
	case isSpecialParam(s.peek()):
		r := s.advance()
		return ast.NewVarExpand(s.span(sl, sc), string(r), false, ast.OpNone, "", true)
	case isNameStart(s.peek()):
		var name strings.Builder
		for !s.eof() && isNameRune(s.peek()) {
			name.WriteRune(s.advance())
		}
		return ast.NewVarExpand(s.span(sl, sc), name.String(), false, ast.OpNone, "", false)
	default:
		return ast.NewLiteral(s.span(sl, sc), "$")
	}
}

func isSpecialParam(r rune) bool {
	switch r {
	case '?', '$', '!', '#', '@', '*', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	default:
		return false
	}
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameRune(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9')
}

func (s *wordScanner) scanArith(sl, sc int) ast.Segment {
	s.advance() // (
	s.advance() // (
	var b strings.Builder
	depth := 2
	for !s.eof() && depth > 0 {
		r := s.peek()
		if r == '(' {
			depth++
		} else if r == ')' {
			depth--
			if depth == 0 {
				s.advance()
				break
			}
		}
		b.WriteRune(s.advance())
	}
	if !s.eof() && s.peek() == ')' {
		s.advance()
	}
	return ast.NewArithSub(s.span(sl, sc), strings.TrimSuffix(b.String(), ")"))
}

func (s *wordScanner) scanCmdSub(sl, sc int, backticks bool) ast.Segment {
	s.advance() // (
	var b strings.Builder
	depth := 1
	for !s.eof() && depth > 0 {
		r := s.peek()
		if r == '(' {
			depth++
		} else if r == ')' {
			depth--
			if depth == 0 {
				s.advance()
				break
			}
		}
		b.WriteRune(s.advance())
	}
	body, _, _ := Parse(source.New("", b.String()))
	return ast.NewCmdSub(s.span(sl, sc), body, backticks)
}

// scanBacktickCmdSub scans a `...` command substitution, unescaping the
// backslash-backtick sequences POSIX requires inside one (spec §4.8.3:
// the purifier normalizes these to $(...) once parsed, but the parser's
// job here is just to recognize the construct at all).
func (s *wordScanner) scanBacktickCmdSub() ast.Segment {
	sl, sc := s.here()
	s.advance() // opening `
	var b strings.Builder
	for !s.eof() && s.peek() != '`' {
		if s.peek() == '\\' && s.peekAt(1) == '`' {
			s.advance()
			b.WriteRune(s.advance())
			continue
		}
		b.WriteRune(s.advance())
	}
	if !s.eof() {
		s.advance() // closing `
	}
	body, _, _ := Parse(source.New("", b.String()))
	return ast.NewCmdSub(s.span(sl, sc), body, true)
}

func (s *wordScanner) scanBraced(sl, sc int) ast.Segment {
	s.advance() // {
	var name strings.Builder
	for !s.eof() && isNameRune(s.peek()) {
		name.WriteRune(s.advance())
	}
	op := ast.OpNone
	var arg string
	if !s.eof() && s.peek() != '}' {
		switch {
		case s.peekString(":-"):
			op, arg = ast.OpDefault, s.restUntilBrace()
		case s.peekString(":="):
			op, arg = ast.OpAssignDefault, s.restUntilBrace()
		case s.peekString(":+"):
			op, arg = ast.OpAltValue, s.restUntilBrace()
		case s.peekString(":?"):
			op, arg = ast.OpError, s.restUntilBrace()
		case s.peekString("##"):
			op, arg = ast.OpRemoveLongP, s.restUntilBrace()
		case s.peek() == '#':
			op, arg = ast.OpRemoveShortP, s.restUntilBrace()
		case s.peekString("%%"):
			op, arg = ast.OpRemoveLongS, s.restUntilBrace()
		case s.peek() == '%':
			op, arg = ast.OpRemoveShortS, s.restUntilBrace()
		case s.peek() == '/':
			op, arg = ast.OpSubst, s.restUntilBrace()
		default:
			op, arg = ast.OpDefault, s.restUntilBrace()
		}
	}
	if !s.eof() && s.peek() == '}' {
		s.advance()
	}
	return ast.NewVarExpand(s.span(sl, sc), name.String(), true, op, arg, false)
}

func (s *wordScanner) restUntilBrace() string {
	// consume operator marker characters already identified by caller
	switch c := s.peek(); {
	case c == ':':
		s.advance()
		if strings.ContainsRune("-=+?", s.peek()) {
			s.advance()
		}
	case c == '#' || c == '%':
		s.advance()
		if s.peek() == c {
			s.advance()
		}
	case strings.ContainsRune("-=+?/", c):
		s.advance()
	}
	var arg strings.Builder
	depth := 0
	for !s.eof() {
		r := s.peek()
		if r == '{' {
			depth++
		}
		if r == '}' {
			if depth == 0 {
				break
			}
			depth--
		}
		arg.WriteRune(s.advance())
	}
	return arg.String()
}

func (s *wordScanner) peekString(str string) bool {
	rs := []rune(str)
	for i, r := range rs {
		if s.peekAt(i) != r {
			return false
		}
	}
	return true
}
