package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for ctyper
type Config struct {
	Name        string           `yaml:"name"`
	Indent      Indent           `yaml:"indent"`
	LineFeed    string           `yaml:"line_feed"`
	HeaderGuard string           `yaml:"header_guard"`
	CppGuard    bool             `yaml:"cpp_guard"`
	Autogen     AutogenConfig    `yaml:"autogen"`
	License     LicenseConfig    `yaml:"license"`
	Formatting  FormattingConfig `yaml:"formatting"`
	Types       TypesConfig      `yaml:"types"`
	Naming      NamingConfig     `yaml:"naming"`
	Dev         DevConfig        `yaml:"dev"`
}

// Indent is the indentation unit. In YAML it is either a number of spaces
// or a literal string such as "\t".
type Indent string

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Indent) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("indent must be a number or a string, got %s", value.Tag)
	}
	if value.Tag == "!!int" {
		n, err := strconv.Atoi(value.Value)
		if err != nil {
			return fmt.Errorf("invalid indent %q: %w", value.Value, err)
		}
		if n < 0 {
			return fmt.Errorf("indent must not be negative, got %d", n)
		}
		*i = Indent(strings.Repeat(" ", n))
		return nil
	}
	*i = Indent(value.Value)
	return nil
}

// AutogenConfig controls the "do not edit" banner
type AutogenConfig struct {
	Enabled bool `yaml:"enabled"`
	// Source is shown as the file to edit instead; defaults to the model path.
	Source string `yaml:"source"`
}

// LicenseConfig controls the license comment at the top of each file
type LicenseConfig struct {
	Text    string          `yaml:"text"`
	Intro   string          `yaml:"intro"`
	Authors []models.Author `yaml:"authors"`
}

// FormattingConfig controls post-processing of generated text
type FormattingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TypesConfig controls primitive inference for untyped variables
type TypesConfig struct {
	ForceInt64 bool          `yaml:"force_int64"`
	Mappings   []TypeMapping `yaml:"mappings"`
}

// TypeMapping assigns a primitive to variables whose name matches Pattern
type TypeMapping struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"`
	Include string `yaml:"include,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// NamingConfig controls derived identifiers
type NamingConfig struct {
	EnumPrefixFromName bool `yaml:"enum_prefix_from_name"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Line feed settings.
const (
	LineFeedLF   = "lf"
	LineFeedCRLF = "crlf"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Indent:   "    ",
		LineFeed: LineFeedLF,
		CppGuard: false,
		Autogen: AutogenConfig{
			Enabled: true,
		},
		Formatting: FormattingConfig{
			Enabled: true,
		},
		Types: TypesConfig{
			ForceInt64: false,
			Mappings:   []TypeMapping{},
		},
		Naming: NamingConfig{
			EnumPrefixFromName: false,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".ctyper.yml", ".ctyper.yaml", "ctyper.yml", "ctyper.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks values that YAML decoding cannot and compiles the type
// mapping patterns.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LineFeed) {
	case "", LineFeedLF, LineFeedCRLF:
	default:
		return errors.NewConfigError(fmt.Sprintf("invalid line_feed '%s', expected 'lf' or 'crlf'", c.LineFeed), nil)
	}

	for i := range c.Types.Mappings {
		mapping := &c.Types.Mappings[i]
		if mapping.Type == "" {
			return errors.NewConfigError(fmt.Sprintf("type mapping '%s' has no type", mapping.Pattern), nil)
		}
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return errors.NewConfigError(fmt.Sprintf("invalid type mapping pattern '%s'", mapping.Pattern), err)
		}
		mapping.regex = regex
	}

	return nil
}

// MatchesName checks if this type mapping matches the given variable name
func (tm *TypeMapping) MatchesName(name string) bool {
	if tm.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(tm.Pattern)
		if err != nil {
			return false
		}
		tm.regex = regex
	}
	return tm.regex.MatchString(name)
}

// FindTypeMapping finds the first type mapping that matches the variable name
func (c *Config) FindTypeMapping(name string) (TypeMapping, bool) {
	for i := range c.Types.Mappings {
		if c.Types.Mappings[i].MatchesName(name) {
			return c.Types.Mappings[i], true
		}
	}
	return TypeMapping{}, false
}

// IndentString returns the indentation unit, four spaces when unset.
func (c *Config) IndentString() string {
	if c.Indent == "" {
		return "    "
	}
	return string(c.Indent)
}

// LineFeedString returns the line terminator for generated files.
func (c *Config) LineFeedString() string {
	if strings.EqualFold(c.LineFeed, LineFeedCRLF) {
		return "\r\n"
	}
	return "\n"
}

// HeaderGuardFor returns the include guard macro for a header named name,
// e.g. "_MOTOR_TABLES_H_" for "motorTables".
func (c *Config) HeaderGuardFor(name string) string {
	if c.HeaderGuard != "" {
		return c.HeaderGuard
	}
	return "_" + strcase.ToScreamingSnake(name) + "_H_"
}

// EnumPrefixFor returns the prefix derived from an enum's type name when
// naming.enum_prefix_from_name is set, e.g. "MOTOR_STATE_" for
// "MotorState_t". It returns "" otherwise.
func (c *Config) EnumPrefixFor(enumName string) string {
	if !c.Naming.EnumPrefixFromName {
		return ""
	}
	base := strings.TrimSuffix(enumName, "_t")
	if base == "" {
		return ""
	}
	return strcase.ToScreamingSnake(base) + "_"
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty
// cliName keeps the configured name; cliDebug only ever turns debugging on.
func LoadConfigWithCLI(configPath, cliName string, cliDebug bool) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cliName != "" {
		cfg.Name = cliName
	}
	if cliDebug {
		cfg.Dev.Debug = true
	}

	return cfg, nil
}
