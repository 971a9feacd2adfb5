package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".ctyper.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "    ", cfg.IndentString())
	assert.Equal(t, "\n", cfg.LineFeedString())
	assert.True(t, cfg.Autogen.Enabled)
	assert.True(t, cfg.Formatting.Enabled)
	assert.False(t, cfg.CppGuard)
	assert.False(t, cfg.Types.ForceInt64)
	assert.False(t, cfg.Naming.EnumPrefixFromName)
	assert.False(t, cfg.Dev.Debug)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
name: motor
indent: 2
line_feed: crlf
header_guard: MOTOR_GUARD
cpp_guard: true
autogen:
  enabled: false
  source: motor.yaml
license:
  text: "MIT License"
  intro: "Motor control tables"
  authors:
    - name: "Ada Lovelace"
      email: "ada@example.com"
    - name: "Anonymous"
formatting:
  enabled: false
types:
  force_int64: true
  mappings:
    - pattern: ".*_mask$"
      type: "uint32_t"
      include: "<stdint.h>"
naming:
  enum_prefix_from_name: true
dev:
  debug: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "motor", cfg.Name)
	assert.Equal(t, "  ", cfg.IndentString())
	assert.Equal(t, "\r\n", cfg.LineFeedString())
	assert.Equal(t, "MOTOR_GUARD", cfg.HeaderGuardFor("anything"))
	assert.True(t, cfg.CppGuard)
	assert.False(t, cfg.Autogen.Enabled)
	assert.Equal(t, "motor.yaml", cfg.Autogen.Source)
	assert.Equal(t, "MIT License", cfg.License.Text)
	assert.Equal(t, "Motor control tables", cfg.License.Intro)
	assert.Equal(t, []models.Author{
		{Name: "Ada Lovelace", Email: "ada@example.com"},
		{Name: "Anonymous"},
	}, cfg.License.Authors)
	assert.False(t, cfg.Formatting.Enabled)
	assert.True(t, cfg.Types.ForceInt64)
	assert.True(t, cfg.Naming.EnumPrefixFromName)
	assert.True(t, cfg.Dev.Debug)

	require.Len(t, cfg.Types.Mappings, 1)
	mapping := cfg.Types.Mappings[0]
	assert.Equal(t, ".*_mask$", mapping.Pattern)
	assert.Equal(t, "uint32_t", mapping.Type)
	assert.Equal(t, "<stdint.h>", mapping.Include)
}

func TestConfig_IndentAsString(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "indent: \"\\t\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "\t", cfg.IndentString())
}

func TestConfig_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "cpp_guard: true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.CppGuard)
	assert.Equal(t, "    ", cfg.IndentString())
	assert.True(t, cfg.Autogen.Enabled)
	assert.True(t, cfg.Formatting.Enabled)
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
	assert.ErrorIs(t, err, errors.NewConfigError("", nil))
}

func TestConfig_LoadInvalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"invalid yaml", "name: x\nbad: [unclosed\n", "failed to parse config file"},
		{"negative indent", "indent: -2\n", "indent must not be negative"},
		{"indent list", "indent: [1]\n", "indent must be a number or a string"},
		{"unknown line feed", "line_feed: cr\n", "invalid line_feed 'cr'"},
		{"bad pattern", "types:\n  mappings:\n    - pattern: \"[\"\n      type: int\n", "invalid type mapping pattern"},
		{"mapping without type", "types:\n  mappings:\n    - pattern: \"x\"\n", "has no type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	configPath := filepath.Join(tmpDir, "project", "ctyper.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`name: "found"`), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	require.NoError(t, os.Chdir(nestedDir))

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), `name: "found"`)
}

func TestTypeMapping_MatchesName(t *testing.T) {
	mapping := TypeMapping{Pattern: ".*_mask$", Type: "uint32_t"}

	assert.True(t, mapping.MatchesName("irq_mask"))
	assert.False(t, mapping.MatchesName("mask_bits"))

	invalid := TypeMapping{Pattern: "[", Type: "int"}
	assert.False(t, invalid.MatchesName("anything"))
}

func TestConfig_FindTypeMapping(t *testing.T) {
	cfg := NewConfig()
	cfg.Types.Mappings = []TypeMapping{
		{Pattern: "^count", Type: "size_t", Include: "<stddef.h>"},
		{Pattern: ".*", Type: "int"},
	}
	require.NoError(t, cfg.Validate())

	mapping, ok := cfg.FindTypeMapping("count_total")
	require.True(t, ok)
	assert.Equal(t, "size_t", mapping.Type)
	assert.Equal(t, "<stddef.h>", mapping.Include)

	mapping, ok = cfg.FindTypeMapping("other")
	require.True(t, ok)
	assert.Equal(t, "int", mapping.Type)

	_, ok = NewConfig().FindTypeMapping("other")
	assert.False(t, ok)
}

func TestConfig_HeaderGuardFor(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "_MOTOR_TABLES_H_", cfg.HeaderGuardFor("motorTables"))
	assert.Equal(t, "_MOTOR_TABLES_H_", cfg.HeaderGuardFor("motor_tables"))
	assert.Equal(t, "_MODEL_H_", cfg.HeaderGuardFor("model"))
}

func TestConfig_EnumPrefixFor(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "", cfg.EnumPrefixFor("MotorState_t"))

	cfg.Naming.EnumPrefixFromName = true
	assert.Equal(t, "MOTOR_STATE_", cfg.EnumPrefixFor("MotorState_t"))
	assert.Equal(t, "COLOR_", cfg.EnumPrefixFor("Color"))
	assert.Equal(t, "", cfg.EnumPrefixFor("_t"))
}

func TestLoadConfigWithCLI(t *testing.T) {
	path := writeConfig(t, "name: from_file\nindent: 3\n")

	cfg, err := LoadConfigWithCLI(path, "from_cli", true)
	require.NoError(t, err)
	assert.Equal(t, "from_cli", cfg.Name)
	assert.True(t, cfg.Dev.Debug)
	assert.Equal(t, "   ", cfg.IndentString())

	// CLI defaults keep file values
	cfg, err = LoadConfigWithCLI(path, "", false)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.Name)
	assert.False(t, cfg.Dev.Debug)
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", "", false)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)

	_, err = LoadConfigWithCLI("/non/existent.yml", "", false)
	assert.Error(t, err)
}
