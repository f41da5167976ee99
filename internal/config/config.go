// Package config assembles the linter configuration from its three
// sources: built-in defaults, a .journalint.yaml file found near the
// linted document and an overlay supplied by the LSP client.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sgryjp/journalint/internal/lint"
)

// FileName is the configuration file searched upward from the linted
// document's directory.
const FileName = ".journalint.yaml"

type Config struct {
	// DisabledRules lists rule codes that must not report anything.
	DisabledRules []string `json:"disabled_rules" yaml:"disabled_rules"`

	// Severities maps a rule code to one of error, warning,
	// information or hint.
	Severities map[string]string `json:"severities" yaml:"severities"`

	// SplitActivityPrefixes splits "prefix: body" activities into
	// extra code columns on export.
	SplitActivityPrefixes bool `json:"split_activity_prefixes" yaml:"split_activity_prefixes"`
}

var defaultConfig = Config{}

// Default returns the built-in configuration.
func Default() Config { return defaultConfig }

// Overlay applies v, typically a decoded initializationOptions value,
// on top of c. Only fields present in v overwrite.
func (c Config) Overlay(v any) (Config, error) {
	// Unmarshal merges into an existing map, so give it a private copy.
	if c.Severities != nil {
		m := make(map[string]string, len(c.Severities))
		for code, severity := range c.Severities {
			m[code] = severity
		}
		c.Severities = m
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in v will overwrite.
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return c, nil
}

// LoadFile reads a YAML configuration file and overlays it onto base.
func LoadFile(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the path of the nearest configuration file, walking
// from dir toward the filesystem root. It returns "" when there is
// none.
func Discover(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Resolve assembles the configuration for a document at path. explicit,
// when not empty, names the configuration file to use instead of
// discovery; overlay, when non-nil, is applied last.
func Resolve(path, explicit string, overlay any) (Config, error) {
	cfg := Default()

	file := explicit
	if file == "" {
		file = Discover(filepath.Dir(path))
	}
	if file != "" {
		var err error
		cfg, err = LoadFile(cfg, file)
		if err != nil {
			return Config{}, err
		}
	}

	if overlay != nil {
		var err error
		cfg, err = cfg.Overlay(overlay)
		if err != nil {
			return Config{}, err
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate rejects rule codes the linter does not know and severity
// names it cannot parse.
func (c Config) Validate() error {
	for _, code := range c.DisabledRules {
		if !lint.KnownRule(code) {
			return unknownRuleError(code)
		}
	}
	for code, severity := range c.Severities {
		if !lint.KnownRule(code) {
			return unknownRuleError(code)
		}
		if _, err := lint.ParseSeverity(severity); err != nil {
			return fmt.Errorf("rule %q: %w", code, err)
		}
	}
	return nil
}

func unknownRuleError(code string) error {
	return fmt.Errorf("unknown rule %q (known rules: %s)",
		code, strings.Join(lint.Codes(), ", "))
}

// LintOptions converts the configuration into linter options. Values
// Validate would reject are dropped here.
func (c Config) LintOptions() *lint.Options {
	opts := &lint.Options{Disabled: c.DisabledRules}
	if len(c.Severities) > 0 {
		opts.Severities = make(map[string]lint.Severity, len(c.Severities))
		for code, name := range c.Severities {
			if s, err := lint.ParseSeverity(name); err == nil {
				opts.Severities[code] = s
			}
		}
	}
	return opts
}
