// Package report renders a diagnostic list in the three formats spec
// §6's format_output names, plus the --format yaml variant SPEC_FULL.md
// §11 adds for SC-parity-tool users who expect it next to JSON/SARIF.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/paiml/bashrs-sub018/internal/diag"
	"github.com/paiml/bashrs-sub018/internal/rules"
)

type OutputFormat string

const (
	Human OutputFormat = "human"
	JSON  OutputFormat = "json"
	Sarif OutputFormat = "sarif"
	YAML  OutputFormat = "yaml"
)

// wireFix/wireDiagnostic/wireDoc mirror the stable JSON schema spec §6
// pins: callers outside this module (CI tools) depend on these exact
// field names.
type wireFix struct {
	Replacement  string   `json:"replacement" yaml:"replacement"`
	Safety       string   `json:"safety" yaml:"safety"`
	Assumptions  []string `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

type wireSpan struct {
	StartLine int `json:"start_line" yaml:"start_line"`
	StartCol  int `json:"start_col" yaml:"start_col"`
	EndLine   int `json:"end_line" yaml:"end_line"`
	EndCol    int `json:"end_col" yaml:"end_col"`
}

type wireDiagnostic struct {
	Code     string   `json:"code" yaml:"code"`
	Severity string   `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Span     wireSpan `json:"span" yaml:"span"`
	Fix      *wireFix `json:"fix,omitempty" yaml:"fix,omitempty"`
}

type wireDoc struct {
	Diagnostics []wireDiagnostic `json:"diagnostics" yaml:"diagnostics"`
}

func toWire(diags []diag.Diagnostic) wireDoc {
	doc := wireDoc{Diagnostics: make([]wireDiagnostic, 0, len(diags))}
	for _, d := range diags {
		wd := wireDiagnostic{
			Code:     d.Code,
			Severity: d.Severity.String(),
			Message:  d.Message,
			Span: wireSpan{
				StartLine: d.Span.StartLine, StartCol: d.Span.StartCol,
				EndLine: d.Span.EndLine, EndCol: d.Span.EndCol,
			},
		}
		if d.Fix != nil {
			wd.Fix = &wireFix{
				Replacement:  d.Fix.Replacement,
				Safety:       d.Fix.Safety.String(),
				Assumptions:  d.Fix.Assumptions,
				Alternatives: d.Fix.Alternatives,
			}
		}
		doc.Diagnostics = append(doc.Diagnostics, wd)
	}
	return doc
}

// Format renders diags as f, given path for human-readable location
// prefixes and registry for SARIF's rules array (nil is fine for
// Human/JSON/YAML, which don't need rule metadata).
func Format(f OutputFormat, path string, diags []diag.Diagnostic, registry *rules.Registry, useColor bool) ([]byte, error) {
	switch f {
	case JSON:
		return json.MarshalIndent(toWire(diags), "", "  ")
	case YAML:
		return yaml.Marshal(toWire(diags))
	case Sarif:
		return sarifOutput(path, diags, registry)
	default:
		return []byte(humanOutput(path, diags, useColor)), nil
	}
}

func humanOutput(path string, diags []diag.Diagnostic, useColor bool) string {
	if path == "" {
		path = "-"
	}
	var b strings.Builder
	for _, d := range diags {
		label := d.Severity.String()
		if useColor {
			label = colorForSeverity(d.Severity).Sprint(label)
		}
		fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n", path, d.Span.StartLine, d.Span.StartCol, label, d.Message, d.Code)
	}
	return b.String()
}

func colorForSeverity(s diag.Severity) *color.Color {
	switch s {
	case diag.Error:
		return color.New(color.FgRed, color.Bold)
	case diag.Warning:
		return color.New(color.FgYellow)
	case diag.Info, diag.Note:
		return color.New(color.FgCyan)
	case diag.Perf, diag.Risk:
		return color.New(color.FgMagenta)
	default:
		return color.New()
	}
}

// --- SARIF -----------------------------------------------------------

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool      `json:"tool"`
	Results []sarifResult  `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

// sarifRule is the addition SPEC_FULL.md §12 pins: one entry per
// triggered rule ID carrying the Rule Registry's own metadata, since a
// SARIF consumer expects a `rules` array alongside `results`.
type sarifRule struct {
	ID               string            `json:"id"`
	ShortDescription sarifText         `json:"shortDescription"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifText       `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysLoc `json:"physicalLocation"`
}

type sarifPhysLoc struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.Error:
		return "error"
	case diag.Warning:
		return "warning"
	default:
		return "note"
	}
}

func sarifOutput(path string, diags []diag.Diagnostic, registry *rules.Registry) ([]byte, error) {
	if path == "" {
		path = "stdin"
	}
	seen := map[string]bool{}
	var ruleList []sarifRule
	var results []sarifResult
	for _, d := range diags {
		results = append(results, sarifResult{
			RuleID:  d.Code,
			Level:   sarifLevel(d.Severity),
			Message: sarifText{Text: d.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysLoc{
				ArtifactLocation: sarifArtifact{URI: path},
				Region: sarifRegion{
					StartLine: d.Span.StartLine, StartColumn: d.Span.StartCol,
					EndLine: d.Span.EndLine, EndColumn: d.Span.EndCol,
				},
			}}},
		})
		if seen[d.Code] {
			continue
		}
		seen[d.Code] = true
		rule := sarifRule{ID: d.Code, ShortDescription: sarifText{Text: d.Message}}
		if registry != nil {
			if m, ok := registry.Lookup(d.Code); ok {
				rule.Properties = map[string]string{
					"category":      string(m.Category),
					"compatibility": string(m.Compatibility),
				}
			}
		}
		ruleList = append(ruleList, rule)
	}
	sort.Slice(ruleList, func(i, j int) bool { return ruleList[i].ID < ruleList[j].ID })

	doc := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "bashrs", Rules: ruleList}},
			Results: results,
		}},
	}
	return json.MarshalIndent(doc, "", "  ")
}
