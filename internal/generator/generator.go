package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/ctyper/internal/config"
	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
	"github.com/mcncl/ctyper/internal/writer"
	"github.com/rs/zerolog/log"
)

// Generator is responsible for generating C header and source text from a model
type Generator struct {
	config *config.Config
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(config.NewConfig())
}

// NewGeneratorWithConfig creates a new Generator instance with custom configuration
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	return &Generator{config: cfg}
}

// HeaderFileName returns the header file name for doc, e.g. "motor.h".
func HeaderFileName(doc *models.Document) string {
	return doc.Name + ".h"
}

// SourceFileName returns the source file name for doc, e.g. "motor.c".
func SourceFileName(doc *models.Document) string {
	return doc.Name + ".c"
}

// GenerateHeader generates the header: include guard, includes, defines,
// enums, structs, function prototypes and extern declarations of every
// non-static variable.
func (g *Generator) GenerateHeader(doc *models.Document) (string, error) {
	log.Debug().Str("file", HeaderFileName(doc)).Msg("generating header")

	w := g.newWriter()
	g.addPreamble(w, doc)

	guard := g.config.HeaderGuardFor(doc.Name)
	w.StartIfDef(guard, true, "")
	w.Define(guard, "", "")

	system, local := splitIncludes(doc.Includes)
	if len(system) > 0 {
		w.NewLine()
		for _, include := range system {
			w.Include(include, "")
		}
	}
	if len(local) > 0 {
		w.NewLine()
		for _, include := range local {
			w.Include(include, "")
		}
	}

	if g.config.CppGuard {
		w.NewLine()
		w.CppEntry()
	}

	if len(doc.Defines) > 0 {
		w.NewLine()
		for _, d := range doc.Defines {
			w.Define(d.Name, d.Value, d.Comment)
		}
	}

	for _, e := range doc.Enums {
		w.NewLine()
		w.AddEnum(e)
	}

	for _, s := range doc.Structs {
		w.NewLine()
		if s.Comment != "" {
			w.AddLine("", s.Comment)
		}
		if err := w.AddStruct(s); err != nil {
			return "", errors.NewGenerateError(fmt.Sprintf("failed to generate struct '%s'", s.Name), err)
		}
	}

	if len(doc.Functions) > 0 {
		w.NewLine()
		for _, f := range doc.Functions {
			w.AddFunctionPrototype(f, f.Comment)
		}
	}

	externs := exportedVariables(doc)
	if len(externs) > 0 {
		w.NewLine()
		for _, v := range externs {
			w.AddVariableDeclaration(v, true)
		}
	}

	if g.config.CppGuard {
		w.NewLine()
		w.CppExit()
	}

	w.NewLine()
	w.EndIfDef()

	return w.String(), nil
}

// GenerateSource generates the source file: the include of the header,
// every variable with its initializer and the definitions of functions
// that have a body.
func (g *Generator) GenerateSource(doc *models.Document) (string, error) {
	log.Debug().Str("file", SourceFileName(doc)).Msg("generating source")

	w := g.newWriter()
	g.addPreamble(w, doc)

	w.Include(`"`+HeaderFileName(doc)+`"`, "")

	for _, v := range doc.Variables {
		w.NewLine()
		if err := w.AddVariableInitialization(v); err != nil {
			return "", errors.NewGenerateError(fmt.Sprintf("failed to generate variable '%s'", v.Name), err)
		}
	}

	for _, f := range doc.Functions {
		if len(f.Body) == 0 {
			continue
		}
		w.NewLine()
		w.AddFunctionDefinition(f, f.Comment)
		w.OpenBrace()
		for _, line := range f.Body {
			w.AddLine(line, "")
		}
		w.CloseBrace(true)
	}

	return w.String(), nil
}

func (g *Generator) newWriter() *writer.CodeWriter {
	return writer.NewCodeWriter(g.config.LineFeedString(), g.config.IndentString())
}

// addPreamble writes the autogen and license comments when configured.
func (g *Generator) addPreamble(w *writer.CodeWriter, doc *models.Document) {
	if g.config.Autogen.Enabled {
		source := g.config.Autogen.Source
		if source == "" {
			source = doc.Source
		}
		w.AddAutogenComment(source)
	}
	if g.config.License.Text != "" {
		w.AddLicenseComment(g.config.License.Text, g.config.License.Authors, g.config.License.Intro)
	}
}

// splitIncludes separates <system> includes from "local" ones, each group
// sorted for consistent output. Bare file names are local.
func splitIncludes(includes []string) (system, local []string) {
	for _, include := range includes {
		switch {
		case strings.HasPrefix(include, "<"):
			system = append(system, include)
		case strings.HasPrefix(include, `"`):
			local = append(local, include)
		default:
			local = append(local, `"`+include+`"`)
		}
	}
	sort.Strings(system)
	sort.Strings(local)
	return system, local
}

// exportedVariables returns the variables visible outside the source file.
func exportedVariables(doc *models.Document) []*models.Variable {
	var out []*models.Variable
	for _, v := range doc.Variables {
		if !v.HasQualifier("static") {
			out = append(out, v)
		}
	}
	return out
}
