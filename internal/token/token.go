// Package token defines the lexer's output vocabulary (spec §3, §4.1).
package token

import "github.com/paiml/bashrs-sub018/internal/source"

// Kind classifies a Token. Operator/Keyword/Redirect/String carry a
// sub-kind via the fields below rather than via a proliferation of Kind
// constants, mirroring how the spec groups them in prose.
type Kind int

const (
	Word Kind = iota
	AssignmentWord
	Operator
	Keyword
	Redirect
	Number
	String
	Heredoc
	Comment
	Shebang
	Newline
	EOF
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "Word"
	case AssignmentWord:
		return "AssignmentWord"
	case Operator:
		return "Operator"
	case Keyword:
		return "Keyword"
	case Redirect:
		return "Redirect"
	case Number:
		return "Number"
	case String:
		return "String"
	case Heredoc:
		return "Heredoc"
	case Comment:
		return "Comment"
	case Shebang:
		return "Shebang"
	case Newline:
		return "Newline"
	case EOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// StringKind distinguishes the quoting style of a Kind==String token.
type StringKind int

const (
	NotString StringKind = iota
	SingleQuoted
	DoubleQuoted
	DollarSingleQuoted // $'...'
	AnsiC               // alias of DollarSingleQuoted, kept distinct name per spec wording
)

// QuotingContext is the lexical context a token's lexeme was scanned under
// (spec §3).
type QuotingContext int

const (
	Unquoted QuotingContext = iota
	InSingleQuoted
	InDoubleQuoted
	InHeredocQuoted
	InHeredocUnquoted
	InCommandSub
	InArithmetic
)

func (q QuotingContext) String() string {
	switch q {
	case InSingleQuoted:
		return "SingleQuoted"
	case InDoubleQuoted:
		return "DoubleQuoted"
	case InHeredocQuoted:
		return "Heredoc(quoted)"
	case InHeredocUnquoted:
		return "Heredoc(unquoted)"
	case InCommandSub:
		return "CommandSub"
	case InArithmetic:
		return "Arithmetic"
	default:
		return "Unquoted"
	}
}

// Token is one lexical unit with its originating span and quoting context.
type Token struct {
	Kind       Kind
	Lexeme     string
	Span       source.Span
	Quoting    QuotingContext
	StringKind StringKind
	// Operator/Keyword/Redirect carry their exact spelling in Lexeme;
	// these helpers classify it without re-parsing the string everywhere.
}

// IsKeyword reports whether the lexeme is one of the reserved words that
// are keywords only in command-name position (spec §4.2, property P3).
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

var keywords = map[string]struct{}{
	"if": {}, "then": {}, "elif": {}, "else": {}, "fi": {},
	"for": {}, "while": {}, "until": {}, "do": {}, "done": {},
	"case": {}, "esac": {}, "in": {}, "function": {}, "return": {},
	"select": {}, "time": {}, "{": {}, "}": {}, "!": {},
}

// IsReservedStatementBoundary reports whether a lexeme acts as a parser
// recovery point for panic-mode error recovery (spec §4.2).
func IsReservedStatementBoundary(word string) bool {
	switch word {
	case "fi", "done", "esac", "}", ";", "\n":
		return true
	default:
		return false
	}
}
