// Package ast defines the bashrs shell AST (spec §3). Every node is a
// concrete struct carrying its own source.Span; composite nodes hold their
// children as interfaces, the same shape mvdan.cc/sh/v3/syntax uses (and
// that the teacher's pkg/shellformat walks), generalized here to carry
// bashrs's own diagnostic-friendly Word/Segment model instead of that
// library's.
package ast

import "github.com/paiml/bashrs-sub018/internal/source"

// Node is implemented by every AST node.
type Node interface {
	Span() source.Span
}

// Item is any top-level-or-nested statement kind.
type Item interface {
	Node
	itemNode()
}

// Script is the root of a parsed file.
type Script struct {
	Items []Item
	Sp    source.Span
}

func (s *Script) Span() source.Span { return s.Sp }

type Base struct {
	Sp source.Span
}

func (b Base) Span() source.Span { return b.Sp }

// ---- Words & segments -----------------------------------------------------

// Segment is one piece of a Word (spec §3).
type Segment interface {
	Node
	segmentNode()
}

type SegBase struct{ Base }

func (SegBase) segmentNode() {}

// Literal is a bare, unquoted run of characters.
type Literal struct {
	SegBase
	Value string
}

// NewLiteral constructs a Literal segment. Exported so other packages
// (notably parser) can build Segments without reaching into ast's
// unexported embedding fields.
func NewLiteral(sp source.Span, v string) *Literal {
	return &Literal{SegBase{Base{sp}}, v}
}

// SingleQuoted is a '...'-quoted literal run (no expansions).
type SingleQuoted struct {
	SegBase
	Value string
}

func NewSingleQuoted(sp source.Span, v string) *SingleQuoted {
	return &SingleQuoted{SegBase{Base{sp}}, v}
}

// DoubleQuoted holds the segments that live inside "...".
type DoubleQuoted struct {
	SegBase
	Parts []Segment
}

func NewDoubleQuoted(sp source.Span, parts []Segment) *DoubleQuoted {
	return &DoubleQuoted{SegBase{Base{sp}}, parts}
}

// AnsiCQuoted is a $'...'-quoted literal with backslash escapes resolved.
type AnsiCQuoted struct {
	SegBase
	Value string
}

func NewAnsiCQuoted(sp source.Span, v string) *AnsiCQuoted {
	return &AnsiCQuoted{SegBase{Base{sp}}, v}
}

// VarExpandOp is the operator of a ${...} parameter expansion, if any.
type VarExpandOp string

const (
	OpNone          VarExpandOp = ""
	OpDefault       VarExpandOp = ":-"
	OpAssignDefault VarExpandOp = ":="
	OpAltValue      VarExpandOp = ":+"
	OpError         VarExpandOp = ":?"
	OpLength        VarExpandOp = "#"
	OpRemoveShortP  VarExpandOp = "#" // ${var#pattern}
	OpRemoveLongP   VarExpandOp = "##"
	OpRemoveShortS  VarExpandOp = "%"
	OpRemoveLongS   VarExpandOp = "%%"
	OpSubst         VarExpandOp = "/"
)

// VarExpand is $var or ${var[op[arg]]}.
type VarExpand struct {
	SegBase
	Name      string
	Braced    bool
	Op        VarExpandOp
	Arg       string
	IsSpecial bool // $?, $$, $!, $#, $@, $*, $0..$9
}

func NewVarExpand(sp source.Span, name string, braced bool, op VarExpandOp, arg string, special bool) *VarExpand {
	return &VarExpand{SegBase{Base{sp}}, name, braced, op, arg, special}
}

// CmdSub is $(...) or `...` (the latter normalized to the former by the
// purifier per spec §4.8.3). Backticks records which spelling the source
// used; the purifier clears it, and the emitter always writes $(...).
type CmdSub struct {
	SegBase
	Body      *Script
	Backticks bool
}

func NewCmdSub(sp source.Span, body *Script, backticks bool) *CmdSub {
	return &CmdSub{SegBase{Base{sp}}, body, backticks}
}

// ArithSub is $((...)).
type ArithSub struct {
	SegBase
	Expr string
}

func NewArithSub(sp source.Span, expr string) *ArithSub {
	return &ArithSub{SegBase{Base{sp}}, expr}
}

// ProcessSub is <(...) or >(...).
type ProcessSub struct {
	SegBase
	Dir  byte // '<' or '>'
	Body *Script
}

func NewProcessSub(sp source.Span, dir byte, body *Script) *ProcessSub {
	return &ProcessSub{SegBase{Base{sp}}, dir, body}
}

// BraceExpansion is {a,b,c} or {1..5}.
type BraceExpansion struct {
	SegBase
	Raw string
}

func NewBraceExpansion(sp source.Span, raw string) *BraceExpansion {
	return &BraceExpansion{SegBase{Base{sp}}, raw}
}

// GlobChar is an unquoted glob metacharacter run (*, ?, [...]).
type GlobChar struct {
	SegBase
	Value string
}

func NewGlobChar(sp source.Span, v string) *GlobChar {
	return &GlobChar{SegBase{Base{sp}}, v}
}

// TildeExpansion is ~ or ~user.
type TildeExpansion struct {
	SegBase
	User string
}

func NewTildeExpansion(sp source.Span, user string) *TildeExpansion {
	return &TildeExpansion{SegBase{Base{sp}}, user}
}

// Word is an ordered concatenation of Segments (spec §3: "Word segments
// concatenate to the original lexeme modulo quoting normalization").
type Word struct {
	Base
	Segments []Segment
}

func (w *Word) Span() source.Span { return w.Base.Sp }

// Raw reconstructs the word's literal text by naive concatenation of
// segment values; used by rules that need the pre-quoting text (e.g. to
// recognize $RANDOM) without caring about exact quoting.
func (w *Word) Raw() string {
	var out []byte
	for _, s := range w.Segments {
		out = append(out, literalOf(s)...)
	}
	return string(out)
}

func literalOf(s Segment) string {
	switch v := s.(type) {
	case *Literal:
		return v.Value
	case *SingleQuoted:
		return v.Value
	case *AnsiCQuoted:
		return v.Value
	case *VarExpand:
		if v.Braced {
			return "${" + v.Name + string(v.Op) + v.Arg + "}"
		}
		return "$" + v.Name
	case *CmdSub:
		return "$(...)"
	case *ArithSub:
		return "$((" + v.Expr + "))"
	case *ProcessSub:
		return string(v.Dir) + "(...)"
	case *BraceExpansion:
		return v.Raw
	case *GlobChar:
		return v.Value
	case *TildeExpansion:
		return "~" + v.User
	case *DoubleQuoted:
		var out []byte
		for _, p := range v.Parts {
			out = append(out, literalOf(p)...)
		}
		return string(out)
	default:
		return ""
	}
}

// IsSimpleUnquotedVar reports whether the word is exactly one unquoted
// $var or ${var} segment with no surrounding text — the shape SC2086
// targets.
func (w *Word) IsSimpleUnquotedVar() (*VarExpand, bool) {
	if len(w.Segments) != 1 {
		return nil, false
	}
	v, ok := w.Segments[0].(*VarExpand)
	return v, ok
}

// ---- Redirections -----------------------------------------------------

type RedirKind string

const (
	RedirIn          RedirKind = "<"
	RedirOut         RedirKind = ">"
	RedirAppend      RedirKind = ">>"
	RedirHeredoc     RedirKind = "<<"
	RedirHeredocTabs RedirKind = "<<-"
	RedirHereString  RedirKind = "<<<"
	RedirDupBoth     RedirKind = "&>"
	RedirClobber     RedirKind = ">|"
	RedirDupIn       RedirKind = "<&"
	RedirDupOut      RedirKind = "&"
)

// Redir is one redirection attached to a Command.
type Redir struct {
	Base
	FD         string // empty if unspecified
	Kind       RedirKind
	Target     *Word
	HeredocBody string
	HeredocQuoted bool
}

// ---- Assignments -----------------------------------------------------

type AssignKind string

const (
	AssignPlain AssignKind = "="
	AssignAppend AssignKind = "+="
)

type AssignScope string

const (
	ScopePlain    AssignScope = "plain"
	ScopeLocal    AssignScope = "local"
	ScopeDeclare  AssignScope = "declare"
	ScopeReadonly AssignScope = "readonly"
	ScopeExport   AssignScope = "export"
	ScopeTypeset  AssignScope = "typeset"
)

// Assignment is NAME=value, possibly prefixed by a scope keyword.
type Assignment struct {
	Base
	Name  string
	Value *Word
	Kind  AssignKind
	Scope AssignScope
}

func (a *Assignment) itemNode() {}

// ---- Commands & pipelines ----------------------------------------------

// Command is a simple command: optional leading env assignments, a name
// (possibly empty — an env-only assignment line per spec §3's invariant),
// arguments, and redirections.
type Command struct {
	Base
	Env    []*Assignment
	Name   *Word // nil for an environment-only "assignment command"
	Args   []*Word
	Redirs []*Redir
}

func (c *Command) itemNode() {}

// Compound is implemented by control structures that can appear as a
// Pipeline stage.
type Compound interface {
	Item
	compoundNode()
}

// Pipeline is stage | stage | stage, optionally negated with leading "!".
type Pipeline struct {
	Base
	Stages  []Item // each is *Command or Compound
	Negated bool
}

func (p *Pipeline) itemNode() {}

// Connector joins List elements.
type Connector string

const (
	ConnSequence   Connector = ";"
	ConnBackground Connector = "&"
	ConnAnd        Connector = "&&"
	ConnOr         Connector = "||"
	ConnNone       Connector = "" // last element, no trailing connector
)

// ListElem is one (item, connector-that-follows-it) pair.
type ListElem struct {
	Item      Item
	Connector Connector
}

// List is a `;`/`&`/`&&`/`||`-joined sequence of items.
type List struct {
	Base
	Elems []ListElem
}

func (l *List) itemNode()     {}
func (l *List) compoundNode() {}

// ---- Control structures -------------------------------------------------

type ElIf struct {
	Cond Item
	Body []Item
}

type If struct {
	Base
	Cond  Item
	Then  []Item
	Elifs []ElIf
	Else  []Item
}

func (i *If) itemNode()     {}
func (i *If) compoundNode() {}

type For struct {
	Base
	Var        string
	Words      []*Word // nil when Arithmetic != ""
	Arithmetic string  // C-style for ((...))
	Body       []Item
}

func (f *For) itemNode()     {}
func (f *For) compoundNode() {}

type While struct {
	Base
	Cond  Item
	Body  []Item
	Until bool
}

func (w *While) itemNode()     {}
func (w *While) compoundNode() {}

type CaseTerminator string

const (
	TermBreak    CaseTerminator = ";;"
	TermFallthru CaseTerminator = ";&"
	TermContinue CaseTerminator = ";;&"
)

type CaseArm struct {
	Patterns   []*Word
	Body       []Item
	Terminator CaseTerminator
}

type Case struct {
	Base
	Scrutinee *Word
	Arms      []CaseArm
}

func (c *Case) itemNode()     {}
func (c *Case) compoundNode() {}

type Function struct {
	Base
	Name       string
	Body       []Item
	RsrvWord   bool // declared with the `function` keyword
}

func (f *Function) itemNode()     {}
func (f *Function) compoundNode() {}

type Subshell struct {
	Base
	Body []Item
}

func (s *Subshell) itemNode()     {}
func (s *Subshell) compoundNode() {}

type Group struct {
	Base
	Body []Item
}

func (g *Group) itemNode()     {}
func (g *Group) compoundNode() {}

type CommentItem struct {
	Base
	Text string
}

func (c *CommentItem) itemNode() {}

type ShebangItem struct {
	Base
	Interpreter string // e.g. "/bin/sh" or "/usr/bin/env bash"
}

func (s *ShebangItem) itemNode() {}
