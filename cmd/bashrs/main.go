// Command bashrs is the CLI that exercises the bashrs library: lint a
// script for diagnostics, apply its safe fixes, purify it into
// deterministic POSIX sh, or dump its parsed AST. Flag parsing and
// process-exit-status mapping live entirely here — the core packages
// under internal/ never look at os.Args or call os.Exit.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/alecthomas/repr"
	"github.com/fatih/color"

	"github.com/paiml/bashrs-sub018/internal/cerr"
	"github.com/paiml/bashrs-sub018/internal/clog"
	"github.com/paiml/bashrs-sub018/internal/config"
	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/pkg/bashrs"
)

var (
	app = kingpin.New("bashrs", "Static analysis, auto-fix, and purification for shell scripts")

	lintCmd    = app.Command("lint", "Report diagnostics for a script")
	lintPath   = lintCmd.Arg("path", "Script to lint").Required().String()
	lintFormat = lintCmd.Flag("format", "Output format: human, json, sarif, yaml").Default("human").String()
	lintShell  = lintCmd.Flag("shell", "Force shell type instead of auto-detecting").String()
	lintWatch  = lintCmd.Flag("watch", "Re-lint on every change to path").Bool()

	fixCmd       = app.Command("fix", "Apply safe fixes to a script in place")
	fixPath      = fixCmd.Arg("path", "Script to fix").Required().String()
	fixThreshold = fixCmd.Flag("threshold", "Maximum fix safety to apply: safe, safe-with-assumptions").Default("safe").String()
	fixDryRun    = fixCmd.Flag("dry-run", "Print the diff without writing").Bool()
	fixForce     = fixCmd.Flag("force", "Overwrite an existing .bak backup").Bool()

	purifyCmd    = app.Command("purify", "Rewrite a script to be deterministic, idempotent, POSIX sh")
	purifyPath   = purifyCmd.Arg("path", "Script to purify").Required().String()
	purifyOut    = purifyCmd.Flag("out", "Write purified output here instead of stdout").String()
	purifyStable = purifyCmd.Flag("stable-source", "Override purify.stable_source for this run: placeholder, env:NAME, literal:VALUE").String()

	astCmd   = app.Command("ast", "Parse a script and print its AST")
	astPath  = astCmd.Arg("path", "Script to parse").Required().String()
	astDebug = astCmd.Flag("debug", "Pretty-print the full AST with github.com/alecthomas/repr").Bool()
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fatal(cerr.NewError(cerr.InvalidArgument, "failed to load environment configuration", err))
	}
	setupLogging(env)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	switch command {
	case lintCmd.FullCommand():
		os.Exit(runLint(*lintPath, *lintFormat, *lintShell, *lintWatch, env))
	case fixCmd.FullCommand():
		os.Exit(runFix(*fixPath, *fixThreshold, *fixDryRun, *fixForce))
	case purifyCmd.FullCommand():
		os.Exit(runPurify(*purifyPath, *purifyOut, *purifyStable))
	case astCmd.FullCommand():
		os.Exit(runAST(*astPath, *astDebug))
	}
}

func setupLogging(env *config.Env) {
	useColor := env.Color && isTTY(os.Stderr)
	base := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: env.SlogLevel()})
	slog.SetDefault(slog.New(clog.NewColorHandler(base, useColor)))
}

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func fatal(err *cerr.Error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(err.Code.ExitCode())
}

func readScript(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(cerr.NewError(cerr.NotFound, fmt.Sprintf("cannot read %s", path), err))
	}
	return string(data)
}

// exitForDiagnostics maps a diagnostic set to spec §6's lint exit codes:
// 0 clean, 1 worst case is a Warning, 2 any Error present.
func exitForDiagnostics(diags []diag.Diagnostic) int {
	worst := -1
	for _, d := range diags {
		if d.Severity == diag.Error {
			return 2
		}
		if d.Severity == diag.Warning && worst < 1 {
			worst = 1
		}
	}
	if worst == 1 {
		return 1
	}
	return 0
}

func runLint(path, format, shellOverride string, watch bool, env *config.Env) int {
	useColor := env.Color && format == "human" && isTTY(os.Stdout)

	lintOnce := func() int {
		src := readScript(path)
		result := lintSource(path, src, shellOverride)
		out, err := bashrs.Format(bashrs.ReportFormat(format), path, result.Diagnostics, useColor)
		if err != nil {
			fatal(cerr.NewError(cerr.Internal, "failed to render diagnostics", err))
		}
		os.Stdout.Write(out)
		return exitForDiagnostics(result.Diagnostics)
	}

	if !watch {
		return lintOnce()
	}
	watchLoop(path, func() { lintOnce() })
	return 0
}

func lintSource(path, src, shellOverride string) bashrs.LintResult {
	if shellOverride != "" {
		return bashrs.LintWithShell(path, src, bashrs.ShellType(shellOverride))
	}
	return bashrs.Lint(path, src)
}

func runFix(path, threshold string, dryRun, force bool) int {
	src := readScript(path)
	result := bashrs.Lint(path, src)
	safety := parseSafety(threshold)
	applied := bashrs.ApplyFixes(path, src, result.Diagnostics, safety, dryRun)

	if applied.Diff == "" {
		fmt.Println("no fixes to apply")
		return 0
	}
	fmt.Print(applied.Diff)

	if dryRun {
		return 0
	}

	backupPath := path + ".bak"
	if _, err := os.Stat(backupPath); err == nil && !force {
		fatal(cerr.NewError(cerr.InvalidArgument, backupPath+" already exists, pass --force to overwrite", nil))
	}
	if err := os.WriteFile(backupPath, []byte(src), 0o644); err != nil {
		fatal(cerr.NewError(cerr.Internal, "failed to write backup file", err))
	}
	if err := os.WriteFile(path, []byte(applied.NewSource), 0o644); err != nil {
		fatal(cerr.NewError(cerr.Internal, "failed to write fixed source", err))
	}
	slog.Info("applied fixes", "path", path, "applied", len(applied.Applied), "skipped", len(applied.Skipped))
	return 0
}

func parseSafety(s string) diag.Safety {
	switch s {
	case "safe-with-assumptions":
		return diag.SafeWithAssumptions
	default:
		return diag.Safe
	}
}

func runPurify(path, out, stableOverride string) int {
	src := readScript(path)
	opts := bashrs.PurifyOptions{}
	if stableOverride != "" {
		opts.StableSource = parseStableSource(stableOverride)
	} else {
		cfg, err := config.LoadRuleConfig(".")
		if err != nil {
			fatal(cerr.NewError(cerr.InvalidArgument, "failed to load .bashrs.yml", err))
		}
		opts.StableSource = cfg.ResolveStableSource()
	}
	result := bashrs.Purify(path, src, opts)

	for _, t := range result.Report {
		slog.Info("purify", "change", t.Description, "line", t.Span.StartLine)
	}

	if out == "" {
		fmt.Print(result.PurifiedSource)
		return 0
	}
	if err := os.WriteFile(out, []byte(result.PurifiedSource), 0o644); err != nil {
		fatal(cerr.NewError(cerr.Internal, "failed to write purified output", err))
	}
	return 0
}

func parseStableSource(s string) config.StableSource {
	switch {
	case s == "placeholder":
		return config.Placeholder
	case len(s) > 4 && s[:4] == "env:":
		return config.StableSource{Kind: "env", Name: s[4:]}
	case len(s) > 8 && s[:8] == "literal:":
		return config.StableSource{Kind: "literal", Value: s[8:]}
	default:
		return config.Placeholder
	}
}

func runAST(path string, debug bool) int {
	src := readScript(path)
	script, _, diags := bashrs.Parse(path, src)
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s [%s]\n", path, d.Span.StartLine, d.Span.StartCol, d.Severity, d.Message, d.Code)
	}
	if debug {
		repr.Println(script, repr.Indent("  "))
		return 0
	}
	fmt.Println(color.New(color.Faint).Sprintf("%d top-level item(s) parsed", len(script.Items)))
	return 0
}
