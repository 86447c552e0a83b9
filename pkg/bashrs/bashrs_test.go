package bashrs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/pkg/bashrs"
)

func TestParseNeverFails(t *testing.T) {
	// Deliberately malformed input: an unterminated double-quote.
	script, _, diags := bashrs.Parse("bad.sh", `echo "unterminated`)
	require.NotNil(t, script, "Parse must always return a best-effort AST")
	assert.NotEmpty(t, diags, "malformed input should surface at least one diagnostic")
}

func TestDetectShellType(t *testing.T) {
	st := bashrs.DetectShellType("deploy.bash", "#!/usr/bin/env bash\necho hi\n")
	assert.Equal(t, bashrs.ShellType("bash"), st)
}

func TestLintFindsUnquotedVariable(t *testing.T) {
	result := bashrs.Lint("check.sh", "#!/bin/sh\nrm $FILE\n")
	var codes []string
	for _, d := range result.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "SEC002", "rm on an unquoted variable should trigger SEC002")
}

func TestLintRespectsSuppressionComment(t *testing.T) {
	src := "#!/bin/sh\n# shellcheck disable=SEC002\nrm $FILE\n"
	result := bashrs.Lint("check.sh", src)
	for _, d := range result.Diagnostics {
		assert.NotEqual(t, "SEC002", d.Code, "SEC002 should be suppressed on this line")
	}
}

func TestApplyFixesAppliesSafeQuotingFix(t *testing.T) {
	src := "#!/bin/sh\necho $FILE\n"
	result := bashrs.Lint("x.sh", src)
	applied := bashrs.ApplyFixes("x.sh", src, result.Diagnostics, bashrs.Safe, true)
	assert.Contains(t, applied.NewSource, `"$FILE"`)
}

func TestPurifyReplacesRandom(t *testing.T) {
	src := "#!/bin/sh\necho $RANDOM\n"
	result := bashrs.Purify("x.sh", src, bashrs.PurifyOptions{})
	assert.NotContains(t, result.PurifiedSource, "$RANDOM")
	assert.NotEmpty(t, result.Report)
}

func TestPurifyMakesMkdirIdempotent(t *testing.T) {
	src := "#!/bin/sh\nmkdir /tmp/build\n"
	result := bashrs.Purify("x.sh", src, bashrs.PurifyOptions{})
	assert.Contains(t, result.PurifiedSource, "mkdir -p /tmp/build")
}

func TestFormatJSONRoundTripsDiagnostics(t *testing.T) {
	result := bashrs.Lint("x.sh", "#!/bin/sh\nrm $FILE\n")
	out, err := bashrs.Format(bashrs.JSON, "x.sh", result.Diagnostics, false)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"diagnostics"`)
}

func TestRegistryIsSharedAndImmutable(t *testing.T) {
	r1 := bashrs.Registry()
	r2 := bashrs.Registry()
	assert.Same(t, r1, r2, "the Rule Registry is built once and shared")
	_, ok := r1.Lookup("SEC002")
	assert.True(t, ok, "SEC002 should be registered")
}

func TestLintExitSeverityOrdering(t *testing.T) {
	result := bashrs.Lint("x.sh", "#!/bin/sh\neval \"$USER_INPUT\"\n")
	foundError := false
	for _, d := range result.Diagnostics {
		if d.Code == "SEC001" {
			foundError = true
			assert.Equal(t, diag.Error, d.Severity)
		}
	}
	assert.True(t, foundError, "eval on an expansion should be flagged as SEC001")
}
