// Package rules implements the Rule Registry and Rule Engine (spec
// §4.4, §4.6): a fixed metadata table keyed by rule ID, and a pure
// check(source, tokens, ast, shellType) -> []Diagnostic evaluator that
// consults it. Mirrors the teacher's dynamic-dispatch-over-a-registry
// pattern used for its task handlers — a map of IDs to small objects,
// built once, looked up by key, never mutated after init (spec §9:
// "the only process-wide datum is the Rule Registry").
package rules

import (
	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/paiml/bashrs-sub018/internal/token"
)

// Category groups rule IDs the way spec §2's Rule Registry component
// does: SC1xxx/SC2xxx for ShellCheck parity, SEC/DET/IDEM/CONFIG for
// bashrs-native families.
type Category string

const (
	CategorySC1    Category = "SC1xxx"
	CategorySC2    Category = "SC2xxx"
	CategorySEC    Category = "SEC"
	CategoryDET    Category = "DET"
	CategoryIDEM   Category = "IDEM"
	CategoryCONFIG Category = "CONFIG"
)

// CheckFn is a rule's evaluation function. Rules never raise a Go
// error (spec §7 RuleCheckError is caught by the Engine, not by the
// rule itself) — a rule that cannot complete simply returns what it
// found so far.
type CheckFn func(*Context) []diag.Diagnostic

// Context bundles everything a rule is allowed to look at (spec §4.6's
// check contract): immutable source, the full token vector, the parsed
// AST, and the detected shell type. No rule may hold onto a Context
// past its call.
type Context struct {
	Source    *source.Source
	Tokens    []token.Token
	Script    *ast.Script
	ShellType shelltype.ShellType
}

// Meta is a rule's registry entry (spec §4.4).
type Meta struct {
	ID            string
	Severity      diag.Severity
	Compatibility shelltype.Compat
	HasFix        bool
	Category      Category
	Check         CheckFn
}

// Registry is the immutable, lookup-by-ID rule table (spec §9).
type Registry struct {
	byID map[string]Meta
	all  []Meta
}

// NewRegistry builds the registry once at startup from the fixed rule
// set defined across this package's rule files (sc1xxx.go, sc2xxx.go,
// sec.go, det.go, idem.go, config.go). Constructing more than one
// Registry is harmless but pointless — callers should build one and
// share it, matching spec §9's "no other singletons" guidance.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Meta)}
	for _, m := range allRules() {
		r.byID[m.ID] = m
		r.all = append(r.all, m)
	}
	return r
}

func (r *Registry) Lookup(id string) (Meta, bool) {
	m, ok := r.byID[id]
	return m, ok
}

func (r *Registry) All() []Meta {
	out := make([]Meta, len(r.all))
	copy(out, r.all)
	return out
}

func allRules() []Meta {
	var out []Meta
	out = append(out, sc1xxxRules()...)
	out = append(out, sc2xxxRules()...)
	out = append(out, secRules()...)
	out = append(out, detRules()...)
	out = append(out, idemRules()...)
	out = append(out, configRules()...)
	return out
}
