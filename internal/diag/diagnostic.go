// Package diag defines the diagnostic and fix value types every core
// component communicates through (spec §4.5, §7). Nothing in the core
// raises a Go error for malformed or questionable shell input — it
// produces a Diagnostic value instead.
package diag

import "github.com/paiml/bashrs-sub018/internal/source"

// Severity classifies how seriously a Diagnostic should be treated.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Note
	Perf
	Risk
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Note:
		return "note"
	case Perf:
		return "perf"
	case Risk:
		return "risk"
	default:
		return "unknown"
	}
}

// Safety classifies whether an auto-fix is safe to apply without review
// (spec §4.5, §4.7).
type Safety int

const (
	Unsafe Safety = iota
	Safe
	SafeWithAssumptions
)

func (s Safety) String() string {
	switch s {
	case Safe:
		return "Safe"
	case SafeWithAssumptions:
		return "SafeWithAssumptions"
	default:
		return "Unsafe"
	}
}

// Fix is a proposed textual replacement over a Diagnostic's span.
type Fix struct {
	Replacement string
	Safety      Safety
	Assumptions []string // populated when Safety == SafeWithAssumptions
	Alternatives []string // populated when Safety == Unsafe
}

// Diagnostic is the uniform output of the lexer, parser and rule engine.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	Span     source.Span
	Fix      *Fix
}

// Less orders diagnostics by (start_line, start_col, code), the stable
// ordering the rule engine guarantees (spec §4.6, property P4).
func Less(a, b Diagnostic) bool {
	if a.Span.StartLine != b.Span.StartLine {
		return a.Span.StartLine < b.Span.StartLine
	}
	if a.Span.StartCol != b.Span.StartCol {
		return a.Span.StartCol < b.Span.StartCol
	}
	return a.Code < b.Code
}
