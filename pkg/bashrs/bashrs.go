// Package bashrs is the public library facade spec §6 specifies:
// parse, detect_shell_type, lint, lint_with_shell, apply_fixes, purify,
// and format_output, each a thin composition of the internal pipeline
// stages. Nothing here does its own work — every operation below is a
// direct call into internal/parser, internal/rules, internal/fixapply,
// internal/purify, internal/shelltype, and internal/report.
package bashrs

import (
	"github.com/paiml/bashrs-sub018/internal/ast"
	"github.com/paiml/bashrs-sub018/internal/config"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/fixapply"
	"github.com/paiml/bashrs-sub018/internal/parser"
	"github.com/paiml/bashrs-sub018/internal/purify"
	"github.com/paiml/bashrs-sub018/internal/report"
	"github.com/paiml/bashrs-sub018/internal/rules"
	"github.com/paiml/bashrs-sub018/internal/shelltype"
	"github.com/paiml/bashrs-sub018/internal/source"
	"github.com/paiml/bashrs-sub018/internal/token"
)

// ShellType re-exports internal/shelltype's classification so callers
// of this package never need to import an internal path.
type ShellType = shelltype.ShellType

// Diagnostic and Fix re-export the core's value types unchanged; the
// facade exists to fix the entry points, not to wrap every type.
type Diagnostic = diag.Diagnostic
type Fix = diag.Fix
type Safety = diag.Safety

const (
	Safe                = diag.Safe
	SafeWithAssumptions = diag.SafeWithAssumptions
	Unsafe              = diag.Unsafe
)

// defaultRegistry is built once; the Rule Registry is the only
// process-wide state the core has (spec §9), and it's immutable after
// construction, so sharing one instance across all package-level calls
// is the whole point of building it once here rather than per-call.
var defaultRegistry = rules.NewRegistry()

// Parse never fails (spec §6): grammar errors surface as diagnostics
// alongside the best-effort AST.
func Parse(path, src string) (*ast.Script, []token.Token, []diag.Diagnostic) {
	return parser.Parse(source.New(path, src))
}

// DetectShellType classifies src using path and content together
// (spec §4.3's priority order).
func DetectShellType(path, src string) ShellType {
	return shelltype.Detect(path, src)
}

// LintResult is the convenience return type for Lint/LintWithShell
// (spec §6).
type LintResult struct {
	Diagnostics []diag.Diagnostic
	ShellType   ShellType
}

// Lint auto-detects the shell type from path+src, then runs the Rule
// Engine over the parsed AST.
func Lint(path, src string) LintResult {
	st := DetectShellType(path, src)
	return LintWithShell(path, src, st)
}

// LintWithShell runs the Rule Engine against an explicit shell type,
// skipping auto-detection (spec §6 lint_with_shell).
func LintWithShell(path, src string, st ShellType) LintResult {
	s := source.New(path, src)
	script, toks, parseDiags := parser.Parse(s)
	engine := rules.NewEngine(defaultRegistry)
	diags := engine.Check(s, toks, script, st)
	all := append(append([]diag.Diagnostic{}, parseDiags...), diags...)
	return LintResult{Diagnostics: all, ShellType: st}
}

// ApplyFixesResult mirrors fixapply.Result under the facade's own
// naming (spec §6's {new_source, applied, skipped}).
type ApplyFixesResult = fixapply.Result

// ApplyFixes splices the Safe/SafeWithAssumptions-or-better fixes from
// diagnostics into src (spec §4.7). dryRun is accepted for API parity
// with spec §6 but does not change the computation — only whether the
// caller chooses to persist NewSource.
func ApplyFixes(path, src string, diagnostics []diag.Diagnostic, threshold Safety, dryRun bool) ApplyFixesResult {
	return fixapply.ApplyFixes(source.New(path, src), diagnostics, threshold, dryRun)
}

// PurifyOptions configures Purify; StableSource resolves spec §9 Open
// Question #1 rather than leaving it to be guessed per call.
type PurifyOptions struct {
	StableSource config.StableSource
}

// PurifyResult mirrors purify.Result under the facade's naming.
type PurifyResult = purify.Result

// Purify rewrites src under the Purifier's four invariants and
// re-emits POSIX shell text (spec §4.8, §6).
func Purify(path, src string, opts PurifyOptions) PurifyResult {
	return purify.Purify(source.New(path, src), purify.Options{StableSource: opts.StableSource})
}

// ReportFormat re-exports internal/report's output-format enum so
// callers of this facade never need to import an internal path.
type ReportFormat = report.OutputFormat

const (
	Human = report.Human
	JSON  = report.JSON
	Sarif = report.Sarif
	YAML  = report.YAML
)

// Format renders a LintResult in one of Human/Json/Sarif/Yaml (spec
// §6 format_output).
func Format(f ReportFormat, path string, diags []diag.Diagnostic, useColor bool) ([]byte, error) {
	return report.Format(f, path, diags, defaultRegistry, useColor)
}

// Registry exposes the shared Rule Registry read-only, for callers
// (the CLI's `ast --debug`-adjacent subcommands) that want rule
// metadata without re-running lint.
func Registry() *rules.Registry {
	return defaultRegistry
}
