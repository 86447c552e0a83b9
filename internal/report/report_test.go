package report

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/rules"
	"github.com/paiml/bashrs-sub018/internal/source"
)

func sampleDiags() []diag.Diagnostic {
	return []diag.Diagnostic{
		{
			Code: "SEC002", Severity: diag.Error, Message: "unquoted expansion in rm",
			Span: source.Span{StartLine: 1, StartCol: 4, EndLine: 1, EndCol: 9},
			Fix:  &diag.Fix{Replacement: `"$F"`, Safety: diag.Safe},
		},
		{
			Code: "DET001", Severity: diag.Warning, Message: "non-deterministic expansion",
			Span: source.Span{StartLine: 2, StartCol: 1, EndLine: 2, EndCol: 8},
		},
	}
}

func TestHumanFormatIncludesCodeAndMessage(t *testing.T) {
	out, err := Format(Human, "x.sh", sampleDiags(), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "SEC002") || !strings.Contains(s, "unquoted expansion in rm") {
		t.Errorf("human output = %q, missing code/message", s)
	}
	if !strings.Contains(s, "x.sh:1:4") {
		t.Errorf("human output = %q, missing location prefix", s)
	}
}

func TestJSONFormatMatchesWireSchema(t *testing.T) {
	out, err := Format(JSON, "x.sh", sampleDiags(), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	diags, ok := decoded["diagnostics"].([]any)
	if !ok || len(diags) != 2 {
		t.Fatalf("decoded = %v, want a 2-element diagnostics array", decoded)
	}
	first := diags[0].(map[string]any)
	if first["code"] != "SEC002" {
		t.Errorf("first diagnostic code = %v, want SEC002", first["code"])
	}
}

func TestYAMLFormatIsParseable(t *testing.T) {
	out, err := Format(YAML, "x.sh", sampleDiags(), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if !strings.Contains(string(out), "code: SEC002") {
		t.Errorf("yaml output = %q, want a code: SEC002 line", string(out))
	}
}

func TestSarifIncludesRulesArray(t *testing.T) {
	registry := rules.NewRegistry()
	out, err := Format(Sarif, "x.sh", sampleDiags(), registry, false)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	runs := doc["runs"].([]any)
	run := runs[0].(map[string]any)
	toolRules := run["tool"].(map[string]any)["driver"].(map[string]any)["rules"].([]any)
	if len(toolRules) != 2 {
		t.Errorf("rules array has %d entries, want 2 (one per distinct triggered code)", len(toolRules))
	}
	results := run["results"].([]any)
	if len(results) != 2 {
		t.Errorf("results array has %d entries, want 2", len(results))
	}
}

func TestSarifDedupesRulesByCode(t *testing.T) {
	diags := append(sampleDiags(), diag.Diagnostic{
		Code: "SEC002", Severity: diag.Error, Message: "second occurrence",
		Span: source.Span{StartLine: 5, StartCol: 1, EndLine: 5, EndCol: 3},
	})
	out, err := Format(Sarif, "x.sh", diags, rules.NewRegistry(), false)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	json.Unmarshal(out, &doc)
	run := doc["runs"].([]any)[0].(map[string]any)
	toolRules := run["tool"].(map[string]any)["driver"].(map[string]any)["rules"].([]any)
	if len(toolRules) != 2 {
		t.Errorf("rules array has %d entries, want 2 distinct codes even though SEC002 appears twice in results", len(toolRules))
	}
}
