package formatter

import (
	"strings"
	"testing"

	"github.com/mcncl/ctyper/internal/analyzer"
	"github.com/mcncl/ctyper/internal/generator"
	"github.com/mcncl/ctyper/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ParserAnalyzerGeneratorFormatter(t *testing.T) {
	// Test the full pipeline: Parser -> Analyzer -> Generator -> Formatter
	doc, err := parser.ParseString(`
name: sensor
variables:
  - name: calibration
    qualifiers: const
    value: [[1, 2, 3], [4, 5, 6]]
  - name: label
    qualifiers: [static, const]
    value: "probe"
`)
	require.NoError(t, err)

	require.NoError(t, analyzer.NewAnalyzer().Analyze(doc))

	source, err := generator.NewGenerator().GenerateSource(doc)
	require.NoError(t, err)

	formatted, err := NewFormatter().Format(source)
	require.NoError(t, err)

	assert.Contains(t, formatted, "#include \"sensor.h\"\n")
	assert.Contains(t, formatted, "const int32_t calibration[2][3] =\n    {\n        {1, 2, 3},\n        {4, 5, 6}\n    };\n")
	assert.Contains(t, formatted, "static const char label[] = \"probe\";\n")

	for _, line := range strings.Split(formatted, "\n") {
		assert.Equal(t, strings.TrimRight(line, " \t"), line, "no trailing whitespace")
	}
	assert.NotContains(t, formatted, "\n\n\n")
}
