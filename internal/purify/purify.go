// Package purify implements the Purifier (spec §4.8): an AST-to-AST
// rewriter enforcing determinism, idempotency, safety, and POSIX
// compliance, then re-emitting the result as POSIX sh via internal/emit.
package purify

import (
	"fmt"
	"strings"

	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/config"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/emit"
	"github.com/paiml/bashrs-sub018/internal/parser"
	"github.com/paiml/bashrs-sub018/internal/source"
)

// Transformation is one entry in the purifier's report: what changed
// and why (spec §6 purify's report:[Transformation]).
type Transformation struct {
	Description string
	Span        source.Span
}

// Options configures a purification pass.
type Options struct {
	StableSource config.StableSource
}

// Result is the outcome of a Purify call (spec §6's purify(...) op).
type Result struct {
	PurifiedSource string
	Report         []Transformation
	Diagnostics    []diag.Diagnostic
}

type purifier struct {
	opts   Options
	report []Transformation
	diags  []diag.Diagnostic
}

// Purify parses src, rewrites its AST under the four invariants of
// spec §4.8, and re-emits POSIX shell text. Purification never fails:
// an unresolvable ambiguity (spec §9 Open Question #1, no stable
// substitution source configured beyond Options) degrades to a
// placeholder plus a DET diagnostic rather than aborting.
func Purify(src *source.Source, opts Options) Result {
	script, _, parseDiags := parser.Parse(src)
	p := &purifier{opts: opts}
	p.diags = append(p.diags, parseDiags...)

	newItems := p.rewriteItems(script.Items)
	newItems = p.dedupAliases(newItems)
	newScript := &ast.Script{Items: newItems, Sp: script.Sp}

	return Result{
		PurifiedSource: emit.Emit(newScript),
		Report:         p.report,
		Diagnostics:    p.diags,
	}
}

func (p *purifier) note(desc string, sp source.Span) {
	p.report = append(p.report, Transformation{Description: desc, Span: sp})
}

func (p *purifier) rewriteItems(items []ast.Item) []ast.Item {
	seenPath := map[string]bool{}
	out := make([]ast.Item, 0, len(items))
	for _, it := range items {
		out = append(out, p.rewriteItem(it, seenPath)...)
	}
	return out
}

// rewriteItem may expand one Item into several (ln -s's
// rm-then-relink, per spec §4.8.2), hence the slice return.
func (p *purifier) rewriteItem(it ast.Item, seenPath map[string]bool) []ast.Item {
	switch v := it.(type) {
	case *ast.Command:
		if v.Name == nil && len(v.Env) == 1 && len(v.Redirs) == 0 && v.Env[0].Name == "PATH" && v.Env[0].Value != nil {
			return p.rewritePathAssignment(v.Env[0], seenPath)
		}
		p.rewriteCommandWords(v)
		return p.rewriteCommand(v, seenPath)
	case *ast.Assignment:
		if v.Name == "PATH" && v.Value != nil {
			return p.rewritePathAssignment(v, seenPath)
		}
		p.rewriteWord(v.Value)
		return []ast.Item{v}
	case *ast.Pipeline:
		for i, stage := range v.Stages {
			rewritten := p.rewriteItem(stage, seenPath)
			if len(rewritten) == 1 {
				v.Stages[i] = rewritten[0]
			}
		}
		return []ast.Item{v}
	case *ast.List:
		for i, e := range v.Elems {
			rewritten := p.rewriteItem(e.Item, seenPath)
			if len(rewritten) == 1 {
				v.Elems[i].Item = rewritten[0]
			}
		}
		return []ast.Item{v}
	case *ast.If:
		v.Cond = firstOrSelf(p.rewriteItem(v.Cond, seenPath), v.Cond)
		v.Then = p.rewriteItems(v.Then)
		for i := range v.Elifs {
			v.Elifs[i].Cond = firstOrSelf(p.rewriteItem(v.Elifs[i].Cond, seenPath), v.Elifs[i].Cond)
			v.Elifs[i].Body = p.rewriteItems(v.Elifs[i].Body)
		}
		v.Else = p.rewriteItems(v.Else)
		return []ast.Item{v}
	case *ast.For:
		for _, w := range v.Words {
			p.rewriteWord(w)
		}
		v.Body = p.rewriteItems(v.Body)
		return []ast.Item{v}
	case *ast.While:
		v.Cond = firstOrSelf(p.rewriteItem(v.Cond, seenPath), v.Cond)
		v.Body = p.rewriteItems(v.Body)
		return []ast.Item{v}
	case *ast.Case:
		for i := range v.Arms {
			v.Arms[i].Body = p.rewriteItems(v.Arms[i].Body)
		}
		return []ast.Item{v}
	case *ast.Function:
		if v.RsrvWord {
			v.RsrvWord = false
			p.note(fmt.Sprintf("function %s: dropped `function` keyword for POSIX compatibility", v.Name), v.Span())
		}
		v.Body = p.rewriteItems(v.Body)
		return []ast.Item{v}
	case *ast.Subshell:
		v.Body = p.rewriteItems(v.Body)
		return []ast.Item{v}
	case *ast.Group:
		v.Body = p.rewriteItems(v.Body)
		return []ast.Item{v}
	default:
		return []ast.Item{it}
	}
}

func firstOrSelf(items []ast.Item, self ast.Item) ast.Item {
	if len(items) > 0 {
		return items[0]
	}
	return self
}

func (p *purifier) rewriteCommandWords(c *ast.Command) {
	for _, e := range c.Env {
		p.rewriteWord(e.Value)
	}
	for _, a := range c.Args {
		p.rewriteWord(a)
	}
	for _, r := range c.Redirs {
		p.rewriteWord(r.Target)
	}
}

// rewriteWord applies the determinism invariant (spec §4.8.1) to
// every Segment in w, in place.
func (p *purifier) rewriteWord(w *ast.Word) {
	if w == nil {
		return
	}
	for i, seg := range w.Segments {
		w.Segments[i] = p.rewriteSegment(seg)
	}
}

func (p *purifier) rewriteSegment(seg ast.Segment) ast.Segment {
	switch v := seg.(type) {
	case *ast.VarExpand:
		if v.Name == "RANDOM" || v.Name == "$" {
			repl := p.stableReplacement(v.Span())
			p.note(fmt.Sprintf("replaced non-deterministic $%s with a stable substitution", v.Name), v.Span())
			return repl
		}
		return v
	case *ast.CmdSub:
		if v.Backticks {
			v.Backticks = false
			p.note("normalized `...` command substitution to $(...)", v.Span())
		}
		if isTimestampSub(v) {
			repl := p.stableReplacement(v.Span())
			p.note("replaced non-deterministic timestamp/uuid subshell with a stable substitution", v.Span())
			return repl
		}
		v.Body.Items = p.rewriteItems(v.Body.Items)
		return v
	case *ast.DoubleQuoted:
		for i, part := range v.Parts {
			v.Parts[i] = p.rewriteSegment(part)
		}
		return v
	default:
		return v
	}
}

func isTimestampSub(cs *ast.CmdSub) bool {
	if cs.Body == nil || len(cs.Body.Items) == 0 {
		return false
	}
	cmd, ok := cs.Body.Items[0].(*ast.Command)
	if !ok || cmd.Name == nil {
		return false
	}
	name := cmd.Name.Raw()
	return name == "date" || name == "uuidgen"
}

// stableReplacement resolves the configured StableSource (spec §9 Open
// Question #1) to a Segment, falling back to a visible placeholder and
// a DET001 diagnostic when no source is configured — the rewrite never
// guesses silently.
func (p *purifier) stableReplacement(sp source.Span) ast.Segment {
	switch p.opts.StableSource.Kind {
	case "env":
		return ast.NewVarExpand(sp, p.opts.StableSource.Name, true, ast.OpDefault, "default", false)
	case "literal":
		return ast.NewLiteral(sp, p.opts.StableSource.Value)
	default:
		p.diags = append(p.diags, diag.Diagnostic{
			Code:     "DET001",
			Severity: diag.Note,
			Message:  "no purify.stable_source configured; emitted a placeholder in its place",
			Span:     sp,
		})
		return ast.NewVarExpand(sp, "VERSION", true, ast.OpDefault, "default", false)
	}
}

// splitPathAssignment decomposes a PATH assignment's value into its
// colon-separated literal entries, reporting whether a $PATH reference
// appears among them (a mutation like PATH=$PATH:/x rather than a
// static override). ok is false when the value contains anything else
// an expansion, a command substitution, a glob - that makes it unsafe
// to reconstruct losslessly, so the caller should leave it alone.
func splitPathAssignment(w *ast.Word) (entries []string, hasPathRef bool, ok bool) {
	segs := w.Segments
	if len(segs) == 1 {
		if dq, isDQ := segs[0].(*ast.DoubleQuoted); isDQ {
			segs = dq.Parts
		}
	}
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			entries = append(entries, string(cur))
			cur = nil
		}
	}
	for _, seg := range segs {
		switch v := seg.(type) {
		case *ast.Literal:
			for i := 0; i < len(v.Value); i++ {
				if v.Value[i] == ':' {
					flush()
				} else {
					cur = append(cur, v.Value[i])
				}
			}
		case *ast.VarExpand:
			if v.Name != "PATH" {
				return nil, false, false
			}
			flush()
			hasPathRef = true
		default:
			return nil, false, false
		}
	}
	flush()
	return entries, hasPathRef, true
}

// rewritePathAssignment applies the PATH half of the idempotency
// invariant (spec §4.8.2): a static PATH assignment gets its duplicate
// entries deduped in place, preserving first-occurrence order, while a
// PATH mutation (one that reads $PATH) is wrapped in a
// `case ":$PATH:" in ...` guard so re-sourcing the rc file doesn't grow
// PATH without bound.
func (p *purifier) rewritePathAssignment(a *ast.Assignment, seenPath map[string]bool) []ast.Item {
	entries, hasPathRef, ok := splitPathAssignment(a.Value)
	if !ok {
		p.rewriteWord(a.Value)
		return []ast.Item{a}
	}
	if !hasPathRef {
		deduped := make([]string, 0, len(entries))
		dropped := false
		for _, e := range entries {
			if seenPath[e] {
				dropped = true
				continue
			}
			seenPath[e] = true
			deduped = append(deduped, e)
		}
		if dropped {
			a.Value = literalWord(a.Value.Span(), strings.Join(deduped, ":"))
			p.note("deduped repeated PATH entries, preserving first-occurrence order", a.Span())
		}
		return []ast.Item{a}
	}
	var newEntry string
	for _, e := range entries {
		if !seenPath[e] {
			newEntry = e
			break
		}
	}
	for _, e := range entries {
		seenPath[e] = true
	}
	if newEntry == "" {
		return []ast.Item{a}
	}
	p.note("wrapped PATH mutation in a case \":$PATH:\" guard so re-sourcing doesn't grow it unbounded", a.Span())
	return []ast.Item{p.guardPathMutation(a, newEntry)}
}

// guardPathMutation wraps a PATH-mutating assignment in
//
//	case ":$PATH:" in
//	*":entry:"*) ;;
//	*) PATH=... ;;
//	esac
//
// so the mutation is idempotent across repeated sourcing. Only the
// first newly-appended entry is guarded against; a PATH mutation that
// appends more than one entry in a single statement is rare enough in
// rc files that a representative guard, not an exhaustive one, is
// enough to make the common case idempotent.
func (p *purifier) guardPathMutation(a *ast.Assignment, entry string) ast.Item {
	sp := a.Span()
	scrutinee := &ast.Word{Base: ast.Base{Sp: sp}, Segments: []ast.Segment{
		ast.NewDoubleQuoted(sp, []ast.Segment{
			ast.NewLiteral(sp, ":"),
			ast.NewVarExpand(sp, "PATH", false, ast.OpNone, "", false),
			ast.NewLiteral(sp, ":"),
		}),
	}}
	matchPattern := &ast.Word{Base: ast.Base{Sp: sp}, Segments: []ast.Segment{
		ast.NewLiteral(sp, "*"),
		ast.NewDoubleQuoted(sp, []ast.Segment{ast.NewLiteral(sp, ":"+entry+":")}),
		ast.NewLiteral(sp, "*"),
	}}
	return &ast.Case{
		Base:      ast.Base{Sp: sp},
		Scrutinee: scrutinee,
		Arms: []ast.CaseArm{
			{Patterns: []*ast.Word{matchPattern}, Terminator: ast.TermBreak},
			{Patterns: []*ast.Word{literalWord(sp, "*")}, Body: []ast.Item{a}, Terminator: ast.TermBreak},
		},
	}
}

// rewriteCommand applies the idempotency invariant (spec §4.8.2) and,
// for a narrow set of commands, the POSIX-compliance invariant
// (spec §4.8.4 echo -e -> printf).
func (p *purifier) rewriteCommand(c *ast.Command, seenPath map[string]bool) []ast.Item {
	if c.Name == nil {
		return []ast.Item{c}
	}
	switch c.Name.Raw() {
	case "mkdir":
		if !hasFlag(c, "-p", "--parents") {
			c.Args = append([]*ast.Word{literalWord(c.Name.Span(), "-p")}, c.Args...)
			p.note("added -p so mkdir doesn't fail when the directory already exists", c.Span())
		}
	case "rm":
		if !hasFlag(c, "-f", "--force") {
			c.Args = append([]*ast.Word{literalWord(c.Name.Span(), "-f")}, c.Args...)
			p.note("added -f so rm doesn't fail when the target is already gone", c.Span())
		}
	case "ln":
		if hasFlag(c, "-s", "--symbolic") && len(c.Args) >= 2 {
			target := c.Args[len(c.Args)-1]
			rm := &ast.Command{Base: c.Base, Name: literalWord(c.Span(), "rm"), Args: []*ast.Word{literalWord(c.Span(), "-f"), target}}
			p.note("prefixed ln -s with rm -f on its target so relinking is idempotent", c.Span())
			return []ast.Item{&ast.List{Base: c.Base, Elems: []ast.ListElem{
				{Item: rm, Connector: ast.ConnAnd},
				{Item: c, Connector: ast.ConnNone},
			}}}
		}
	case "echo":
		if hasFlag(c, "-e") && len(c.Args) > 1 {
			args := removeFlag(c.Args, "-e")
			c.Name = literalWord(c.Name.Span(), "printf")
			c.Args = args
			p.note("rewrote echo -e to printf for POSIX portability", c.Span())
		}
	}
	return []ast.Item{c}
}

func hasFlag(c *ast.Command, flags ...string) bool {
	for _, a := range c.Args {
		for _, f := range flags {
			if a.Raw() == f {
				return true
			}
		}
	}
	return false
}

func removeFlag(args []*ast.Word, flag string) []*ast.Word {
	out := make([]*ast.Word, 0, len(args))
	for _, a := range args {
		if a.Raw() != flag {
			out = append(out, a)
		}
	}
	return out
}

func literalWord(sp source.Span, text string) *ast.Word {
	return &ast.Word{Base: ast.Base{Sp: sp}, Segments: []ast.Segment{ast.NewLiteral(sp, text)}}
}

// dedupAliases keeps only the last `alias NAME=...` definition for
// each NAME, at the top level of items (spec §4.8.2: "keep last;
// dedup"). Earlier, shadowed definitions are dropped outright rather
// than merely flagged, since the purifier's job is to rewrite, not
// just report.
func (p *purifier) dedupAliases(items []ast.Item) []ast.Item {
	lastIdx := map[string]int{}
	for i, it := range items {
		cmd, ok := it.(*ast.Command)
		if !ok || cmd.Name == nil || cmd.Name.Raw() != "alias" || len(cmd.Args) == 0 {
			continue
		}
		name, _, ok := strings.Cut(cmd.Args[0].Raw(), "=")
		if !ok {
			continue
		}
		lastIdx[name] = i
	}
	keep := make(map[int]bool, len(lastIdx))
	for _, idx := range lastIdx {
		keep[idx] = true
	}
	out := make([]ast.Item, 0, len(items))
	for i, it := range items {
		cmd, ok := it.(*ast.Command)
		if ok && cmd.Name != nil && cmd.Name.Raw() == "alias" && len(cmd.Args) > 0 && strings.Contains(cmd.Args[0].Raw(), "=") {
			if !keep[i] {
				p.note("dropped shadowed duplicate alias definition", cmd.Span())
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
