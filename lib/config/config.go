// Package config loads hxprops settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration. The zero value is not useful; start
// from Defaults.
type Config struct {
	Attrs     AttrsConfig     `yaml:"attrs"`
	Params    ParamsConfig    `yaml:"params"`
	Enum      EnumConfig      `yaml:"enum"`
	Slots     SlotsConfig     `yaml:"slots"`
	Cache     CacheConfig     `yaml:"cache"`
	Templates TemplatesConfig `yaml:"templates"`
	Tokens    TokensConfig    `yaml:"tokens"`
	Logging   LoggingConfig   `yaml:"logging"`

	// BaseDir is the directory of the loaded file. Relative paths resolve
	// against it.
	BaseDir string `yaml:"-"`
}

type AttrsConfig struct {
	Passthrough   []string `yaml:"passthrough"`
	AppendMarker  string   `yaml:"append_marker"`
	PrependMarker string   `yaml:"prepend_marker"`
}

type ParamsConfig struct {
	ReservedPrefix string   `yaml:"reserved_prefix"`
	ReservedNames  []string `yaml:"reserved_names"`
	HyphenPrefixes []string `yaml:"hyphen_prefixes"`
}

type EnumConfig struct {
	SuggestionCutoff float64 `yaml:"suggestion_cutoff"`
}

type SlotsConfig struct {
	ComponentPrefix string `yaml:"component_prefix"`
	SlotPrefix      string `yaml:"slot_prefix"`
}

type CacheConfig struct {
	Size  int  `yaml:"size"`
	Watch bool `yaml:"watch"`
}

// TemplatesConfig locates component templates for the CLI and generator.
type TemplatesConfig struct {
	Root    string   `yaml:"root"`
	Include []string `yaml:"include"`
	Ignore  []string `yaml:"ignore"`
	Package string   `yaml:"package"` // package name for generated props
}

// TokensConfig holds the secret that seals re-render tokens. An empty
// secret disables the re-render handler.
type TokensConfig struct {
	Secret  string `yaml:"secret"`
	Encrypt bool   `yaml:"encrypt"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Attrs: AttrsConfig{
			AppendMarker:  "&",
			PrependMarker: "&",
		},
		Params: ParamsConfig{
			ReservedPrefix: "_",
			ReservedNames:  []string{"attrs", "contents"},
			HyphenPrefixes: []string{"data-", "aria-"},
		},
		Enum:  EnumConfig{SuggestionCutoff: 0.6},
		Slots: SlotsConfig{ComponentPrefix: "include:", SlotPrefix: "content:"},
		Cache: CacheConfig{Size: 1024},
		Templates: TemplatesConfig{
			Root:    ".",
			Include: []string{"**/*.html"},
			Package: "components",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// FileName is the config file looked up when no path is given.
const FileName = "hxprops.yaml"

// Load reads path, or HXPROPS_CONFIG, or ./hxprops.yaml, on top of
// Defaults. With no path and no file found it returns Defaults.
// ${VAR} and ${VAR:-default} are expanded with getenv before parsing.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if path == "" {
		path = getenv("HXPROPS_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(FileName); err != nil {
			return Defaults(), nil
		}
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(interpolateEnv(data, getenv))
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg.BaseDir = filepath.Dir(abs)
	if !filepath.IsAbs(cfg.Templates.Root) {
		cfg.Templates.Root = filepath.Join(cfg.BaseDir, cfg.Templates.Root)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		value := getenv(string(parts[1]))
		if value == "" && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Attrs.AppendMarker == "" || strings.ContainsAny(c.Attrs.AppendMarker, " \t") {
		errs = append(errs, "attrs.append_marker must be a non-empty token without spaces")
	}
	if c.Attrs.PrependMarker == "" || strings.ContainsAny(c.Attrs.PrependMarker, " \t") {
		errs = append(errs, "attrs.prepend_marker must be a non-empty token without spaces")
	}
	if c.Enum.SuggestionCutoff < 0 || c.Enum.SuggestionCutoff > 1 {
		errs = append(errs, fmt.Sprintf("enum.suggestion_cutoff must be between 0 and 1, got %g", c.Enum.SuggestionCutoff))
	}
	if c.Slots.ComponentPrefix == "" || c.Slots.SlotPrefix == "" {
		errs = append(errs, "slots.component_prefix and slots.slot_prefix are required")
	} else if c.Slots.ComponentPrefix == c.Slots.SlotPrefix {
		errs = append(errs, "slots.component_prefix and slots.slot_prefix must differ")
	}
	if c.Cache.Size < 1 {
		errs = append(errs, fmt.Sprintf("cache.size must be positive, got %d", c.Cache.Size))
	}
	for _, p := range append(append([]string(nil), c.Templates.Include...), c.Templates.Ignore...) {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Sprintf("invalid template pattern %q", p))
		}
	}
	if c.Tokens.Encrypt && c.Tokens.Secret == "" {
		errs = append(errs, "tokens.encrypt requires tokens.secret")
	}
	if !logLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json", "auto":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be text, json or auto, got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}
