package generator

import (
	"strings"
	"testing"

	"github.com/mcncl/ctyper/internal/config"
	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
	"github.com/mcncl/ctyper/internal/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// motorDocument returns an analyzed model exercising every section.
func motorDocument() *models.Document {
	state := &models.Enum{Name: "MotorState_t", Prefix: "MOTOR_"}
	state.AddValue("IDLE", "", "")
	state.AddValue("RUNNING", "5", "")

	motor := &models.Struct{Name: "Motor_t"}
	motor.AddVariable(&models.Variable{Name: "speed", Primitive: "uint16_t"})
	motor.AddStruct(&models.Struct{Name: "Pid_t", RefName: "pid"})

	scale := &models.Function{Name: "scale", ReturnType: "int", Comment: "doubles a", Body: []string{"return a * 2;"}}
	scale.AddArgument(&models.Variable{Name: "a", Primitive: "int"})

	return &models.Document{
		Name:     "motor",
		Includes: []string{`"config.h"`, "<stdint.h>", "<stdbool.h>"},
		Defines:  []models.Define{{Name: "MAX_SPEED", Value: "100", Comment: "rpm"}},
		Enums:    []*models.Enum{state},
		Structs:  []*models.Struct{motor},
		Variables: []*models.Variable{
			{
				Name:       "table",
				Primitive:  "uint8_t",
				Qualifiers: []string{"const"},
				Value:      models.List{models.Ints(1, 2), models.Ints(3, 4)},
				Format:     "{0:#04x}",
			},
			{
				Name:       "lookup",
				Primitive:  "int",
				Qualifiers: []string{"static", "const"},
				Value:      models.Ints(1, 2),
			},
		},
		Functions: []*models.Function{
			scale,
			{Name: "reset", Comment: "defined elsewhere"},
		},
	}
}

func plainConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Autogen.Enabled = false
	return cfg
}

func TestGenerateHeader(t *testing.T) {
	header, err := NewGeneratorWithConfig(plainConfig()).GenerateHeader(motorDocument())
	require.NoError(t, err)

	expected := `#ifndef _MOTOR_H_
#define _MOTOR_H_

#include <stdbool.h>
#include <stdint.h>

#include "config.h"

#define MAX_SPEED 100 // rpm

typedef enum
{
    MOTOR_IDLE,
    MOTOR_RUNNING = 5
} MotorState_t;

typedef struct
{
    uint16_t speed;
    Pid_t pid;
} Motor_t;

int scale(int a); // doubles a
void reset(void); // defined elsewhere

extern const uint8_t table[2][2];

#endif // _MOTOR_H_
`
	assert.Equal(t, expected, header)
}

func TestGenerateSource(t *testing.T) {
	source, err := NewGeneratorWithConfig(plainConfig()).GenerateSource(motorDocument())
	require.NoError(t, err)

	expected := "#include \"motor.h\"\n" +
		"\n" +
		"const uint8_t table[2][2] = \n" +
		"    {\n" +
		"        {0x01, 0x02},\n" +
		"        {0x03, 0x04}\n" +
		"    };\n" +
		"\n" +
		"static const int lookup[2] = {1, 2};\n" +
		"\n" +
		"int scale(int a) // doubles a\n" +
		"{\n" +
		"    return a * 2;\n" +
		"}\n"
	assert.Equal(t, expected, source)
}

func TestGenerateHeader_MinimalDocument(t *testing.T) {
	header, err := NewGeneratorWithConfig(plainConfig()).GenerateHeader(&models.Document{Name: "empty"})
	require.NoError(t, err)
	assert.Equal(t, "#ifndef _EMPTY_H_\n#define _EMPTY_H_\n\n#endif // _EMPTY_H_\n", header)
}

func TestGenerateHeader_CppGuardAndCustomGuard(t *testing.T) {
	cfg := plainConfig()
	cfg.CppGuard = true
	cfg.HeaderGuard = "MOTOR_API"

	header, err := NewGeneratorWithConfig(cfg).GenerateHeader(&models.Document{
		Name:     "motor",
		Includes: []string{"local.h"},
	})
	require.NoError(t, err)

	expected := `#ifndef MOTOR_API
#define MOTOR_API

#include "local.h"

#ifdef __cplusplus // Play nice with C++ compilers
extern "C" {
#endif // __cplusplus

#ifdef __cplusplus // Done playing nice with C++ compilers
}
#endif // __cplusplus

#endif // MOTOR_API
`
	assert.Equal(t, expected, header)
}

func TestGenerate_Preamble(t *testing.T) {
	cfg := config.NewConfig()
	cfg.License.Text = "MIT License"
	cfg.License.Authors = []models.Author{{Name: "Ada Lovelace"}}

	doc := &models.Document{Name: "motor", Source: "models/motor.yaml"}
	gen := NewGeneratorWithConfig(cfg)

	header, err := gen.GenerateHeader(doc)
	require.NoError(t, err)
	source, err := gen.GenerateSource(doc)
	require.NoError(t, err)

	for _, text := range []string{header, source} {
		assert.True(t, strings.HasPrefix(text, "/*\n* This file was autogenerated using ctyper v"+writer.Version+"\n"))
		assert.Contains(t, text, "* Make any changes to the file 'models/motor.yaml'\n")
		assert.Contains(t, text, "Ada Lovelace\n* \n* MIT License\n*/\n")
	}

	cfg.Autogen.Source = "motor.yaml"
	header, err = gen.GenerateHeader(doc)
	require.NoError(t, err)
	assert.Contains(t, header, "* Make any changes to the file 'motor.yaml'\n")
}

func TestGenerate_LineFeedAndIndent(t *testing.T) {
	cfg := plainConfig()
	cfg.LineFeed = config.LineFeedCRLF
	cfg.Indent = "\t"

	doc := &models.Document{
		Name:      "m",
		Variables: []*models.Variable{{Name: "v", Primitive: "int", Value: models.List{models.Ints(1), models.Ints(2)}}},
	}
	source, err := NewGeneratorWithConfig(cfg).GenerateSource(doc)
	require.NoError(t, err)

	assert.Equal(t, "#include \"m.h\"\r\n\r\nint v[2][1] = \r\n\t{\r\n\t\t{1},\r\n\t\t{2}\r\n\t};\r\n", source)
}

func TestGenerateHeader_MissingRefName(t *testing.T) {
	outer := &models.Struct{Name: "Outer_t"}
	outer.AddStruct(&models.Struct{Name: "Inner_t"})

	_, err := NewGenerator().GenerateHeader(&models.Document{Name: "bad", Structs: []*models.Struct{outer}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingRefName)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeGenerate, appErr.Type)
}

func TestGenerateSource_Errors(t *testing.T) {
	_, err := NewGenerator().GenerateSource(&models.Document{
		Name:      "bad",
		Variables: []*models.Variable{{Name: "x", Primitive: "int", Value: models.Int(1), Format: "%d and %d"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadFormat)
	assert.Contains(t, err.Error(), "failed to generate variable 'x'")

	_, err = NewGenerator().GenerateSource(&models.Document{
		Name:      "bad",
		Variables: []*models.Variable{{Name: "x", Primitive: "int"}},
	})
	assert.ErrorIs(t, err, errors.ErrUnrenderable)
}

func TestFileNames(t *testing.T) {
	doc := &models.Document{Name: "motor"}
	assert.Equal(t, "motor.h", HeaderFileName(doc))
	assert.Equal(t, "motor.c", SourceFileName(doc))
}

func TestSplitIncludes(t *testing.T) {
	system, local := splitIncludes([]string{`"b.h"`, "<stdio.h>", "a.h", "<stdint.h>"})
	assert.Equal(t, []string{"<stdint.h>", "<stdio.h>"}, system)
	assert.Equal(t, []string{`"a.h"`, `"b.h"`}, local)
}
