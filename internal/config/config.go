// Package config loads bashrs's process-wide settings: environment
// defaults via envconfig (grounded on the teacher's internal/config/env.go,
// down to the namespace-prefixed struct-tag idiom) plus an optional
// per-project .bashrs.yml for rule selection and the purifier's
// stable-substitution source (spec §9 Open Question #1).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const namespace = "BASHRS"

// Env mirrors the teacher's BaseEnv: a flat envconfig-tagged struct with
// explicit defaults, loaded once at process start.
type Env struct {
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	Color              bool   `envconfig:"COLOR" default:"true"`
	FixSafetyThreshold string `envconfig:"FIX_SAFETY_THRESHOLD" default:"Safe"`
}

// LoadEnv reads BASHRS_*-prefixed environment variables into an Env,
// applying defaults for anything unset (teacher's LoadEnv, renamed
// namespace).
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

// SlogLevel resolves LogLevel to an slog.Level, defaulting to Info on
// anything unparseable rather than failing startup over it.
func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// StableSource is the purifier's configuration point for what a
// non-deterministic construct (`$RANDOM`, `$$`, `$(date ...)`) gets
// replaced with when purified (spec §9 Open Question #1: "pick one
// configuration point, expose it, and do not guess per call site").
type StableSource struct {
	// Kind is one of "placeholder", "env", or "literal".
	Kind string
	// Name is the environment variable name when Kind == "env" (e.g.
	// "VERSION", "USER").
	Name string
	// Value is the literal replacement text when Kind == "literal".
	Value string
}

// Placeholder is the fallback StableSource used when a project's
// .bashrs.yml doesn't set purify.stable_source at all: a visible,
// unambiguous marker rather than silently picking one of env:VERSION /
// env:USER, since both are equally plausible defaults and the spec
// explicitly forbids guessing per call site.
var Placeholder = StableSource{Kind: "placeholder"}

// RuleConfig is the decoded shape of .bashrs.yml.
type RuleConfig struct {
	Disable      []string          `yaml:"disable"`
	Enable       []string          `yaml:"enable"`
	Purify       PurifyConfig      `yaml:"purify"`
	ShellOverride map[string]string `yaml:"shell_override"`
}

type PurifyConfig struct {
	StableSource string `yaml:"stable_source"`
}

// ResolveStableSource decodes the purify.stable_source string into a
// StableSource value. Accepted forms: "placeholder", "env:NAME",
// "literal:VALUE". An empty or unrecognized value falls back to
// Placeholder rather than guessing.
func (c RuleConfig) ResolveStableSource() StableSource {
	s := c.Purify.StableSource
	switch {
	case s == "" || s == "placeholder":
		return Placeholder
	case len(s) > 4 && s[:4] == "env:":
		return StableSource{Kind: "env", Name: s[4:]}
	case len(s) > 8 && s[:8] == "literal:":
		return StableSource{Kind: "literal", Value: s[8:]}
	default:
		return Placeholder
	}
}

// LoadRuleConfig walks upward from dir looking for .bashrs.yml, the
// usual dotfile-config discovery idiom. Returns a zero-value RuleConfig
// (no rules disabled, Placeholder stable source) if none is found —
// config discovery failing is not itself an error.
func LoadRuleConfig(dir string) (*RuleConfig, error) {
	path, ok := findConfigFile(dir)
	if !ok {
		return &RuleConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg RuleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

func findConfigFile(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ".bashrs.yml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
