package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveStableSourceDefaults(t *testing.T) {
	cfg := RuleConfig{}
	got := cfg.ResolveStableSource()
	if got != Placeholder {
		t.Errorf("empty config: got %+v, want Placeholder", got)
	}
}

func TestResolveStableSourceEnv(t *testing.T) {
	cfg := RuleConfig{Purify: PurifyConfig{StableSource: "env:VERSION"}}
	got := cfg.ResolveStableSource()
	want := StableSource{Kind: "env", Name: "VERSION"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestResolveStableSourceLiteral(t *testing.T) {
	cfg := RuleConfig{Purify: PurifyConfig{StableSource: "literal:1.0.0"}}
	got := cfg.ResolveStableSource()
	want := StableSource{Kind: "literal", Value: "1.0.0"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestResolveStableSourceUnrecognizedFallsBackToPlaceholder(t *testing.T) {
	cfg := RuleConfig{Purify: PurifyConfig{StableSource: "nonsense"}}
	if got := cfg.ResolveStableSource(); got != Placeholder {
		t.Errorf("got %+v, want Placeholder", got)
	}
}

func TestLoadRuleConfigMissingFileReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadRuleConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ResolveStableSource() != Placeholder {
		t.Error("expected zero-value config to resolve to Placeholder")
	}
}

func TestLoadRuleConfigWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	yml := "disable:\n  - SC2086\npurify:\n  stable_source: literal:frozen\n"
	if err := os.WriteFile(filepath.Join(root, ".bashrs.yml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRuleConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Disable) != 1 || cfg.Disable[0] != "SC2086" {
		t.Errorf("Disable = %v, want [SC2086]", cfg.Disable)
	}
	want := StableSource{Kind: "literal", Value: "frozen"}
	if got := cfg.ResolveStableSource(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSlogLevelDefaultsOnGarbage(t *testing.T) {
	e := &Env{LogLevel: "not-a-level"}
	if e.SlogLevel().String() != "INFO" {
		t.Errorf("got %v, want INFO", e.SlogLevel())
	}
}

func TestSlogLevelNilEnv(t *testing.T) {
	var e *Env
	if e.SlogLevel().String() != "INFO" {
		t.Errorf("got %v, want INFO", e.SlogLevel())
	}
}
