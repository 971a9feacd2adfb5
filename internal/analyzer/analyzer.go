package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/mcncl/ctyper/internal/config"
	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultName is the base file name used when neither the model nor the
// caller names the output.
const DefaultName = "ctyper_output"

// StdintInclude is added when an inferred or mapped type comes from it.
const StdintInclude = "<stdint.h>"

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Analyzer checks a model before generation and fills in what can be
// derived: missing primitives, enum prefixes and includes.
type Analyzer struct {
	// config holds configuration settings for analysis
	config *config.Config
	// names tracks top-level identifiers to report duplicates
	names map[string]string
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{
		config: cfg,
		names:  make(map[string]string),
	}
}

// Analyze validates doc and completes it in place. It fails on the first
// problem found, before any text is generated.
func (a *Analyzer) Analyze(doc *models.Document) error {
	if doc == nil {
		return errors.NewAnalysisError("no model to analyze", errors.ErrInvalidModel)
	}
	a.names = make(map[string]string)

	if doc.Name == "" {
		doc.Name = DefaultName
	}

	for i := range doc.Defines {
		if err := a.declare("define", doc.Defines[i].Name); err != nil {
			return err
		}
	}

	for _, e := range doc.Enums {
		if err := a.analyzeEnum(e); err != nil {
			return err
		}
	}

	for _, s := range doc.Structs {
		if err := a.analyzeStruct(s); err != nil {
			return err
		}
	}

	for _, v := range doc.Variables {
		if err := a.declare("variable", v.Name); err != nil {
			return err
		}
		if err := a.analyzeVariable(doc, v, true); err != nil {
			return err
		}
	}

	for _, f := range doc.Functions {
		if err := a.analyzeFunction(doc, f); err != nil {
			return err
		}
	}

	doc.Includes = normalizeIncludes(doc.Includes)

	log.Debug().
		Str("name", doc.Name).
		Int("defines", len(doc.Defines)).
		Int("enums", len(doc.Enums)).
		Int("structs", len(doc.Structs)).
		Int("variables", len(doc.Variables)).
		Int("functions", len(doc.Functions)).
		Msg("model analyzed")

	return nil
}

// declare registers a top-level identifier.
func (a *Analyzer) declare(kind, name string) error {
	if err := checkIdentifier(kind, name); err != nil {
		return err
	}
	if previous, exists := a.names[name]; exists {
		return errors.NewAnalysisError(
			fmt.Sprintf("%s '%s' is already declared as a %s", kind, name, previous),
			errors.ErrInvalidModel,
		)
	}
	a.names[name] = kind
	return nil
}

func (a *Analyzer) analyzeEnum(e *models.Enum) error {
	if err := a.declare("enum", e.Name); err != nil {
		return err
	}
	if len(e.Values) == 0 {
		return errors.NewAnalysisError(fmt.Sprintf("enum '%s' has no values", e.Name), errors.ErrInvalidModel)
	}
	if e.Prefix == "" {
		e.Prefix = a.config.EnumPrefixFor(e.Name)
	}
	for _, v := range e.Values {
		if err := a.declare("enum value", e.Prefix+v.Name); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeStruct(s *models.Struct) error {
	if err := a.declare("struct", s.Name); err != nil {
		return err
	}

	fields := make(map[string]struct{}, len(s.Members))
	for _, member := range s.Members {
		var field string
		switch m := member.(type) {
		case *models.Variable:
			if err := checkIdentifier("field", m.Name); err != nil {
				return err
			}
			if m.Primitive == "" {
				return errors.NewAnalysisError(
					fmt.Sprintf("field '%s' of struct '%s' has no primitive", m.Name, s.Name),
					errors.ErrMissingName,
				)
			}
			field = m.Name
		case *models.Struct:
			if m.RefName == "" {
				return errors.NewAnalysisError(
					fmt.Sprintf("no ref_name supplied for struct '%s' in struct '%s'", m.Name, s.Name),
					errors.ErrMissingRefName,
				)
			}
			if err := checkIdentifier("field", m.RefName); err != nil {
				return err
			}
			field = m.RefName
		}

		if _, exists := fields[field]; exists {
			return errors.NewAnalysisError(
				fmt.Sprintf("struct '%s' has duplicate field '%s'", s.Name, field),
				errors.ErrInvalidModel,
			)
		}
		fields[field] = struct{}{}
	}
	return nil
}

// analyzeVariable fills in a missing primitive. Values are required for
// document variables, which are always initialized, but not for arguments.
func (a *Analyzer) analyzeVariable(doc *models.Document, v *models.Variable, needsValue bool) error {
	if needsValue && v.Value == nil {
		return errors.NewAnalysisError(fmt.Sprintf("variable '%s' has no value", v.Name), errors.ErrUnrenderable)
	}
	if v.Primitive != "" {
		return nil
	}

	if mapping, ok := a.config.FindTypeMapping(v.Name); ok {
		v.Primitive = mapping.Type
		if mapping.Include != "" {
			addInclude(doc, mapping.Include)
		}
		log.Debug().Str("variable", v.Name).Str("primitive", v.Primitive).Msg("primitive from type mapping")
		return nil
	}

	if v.Value == nil {
		return errors.NewAnalysisError(fmt.Sprintf("'%s' needs a primitive", v.Name), errors.ErrMissingName)
	}

	primitive, err := a.inferPrimitive(v.Value)
	if err != nil {
		return errors.NewAnalysisError(fmt.Sprintf("cannot infer the type of '%s'", v.Name), err)
	}
	v.Primitive = primitive
	if strings.HasSuffix(primitive, "_t") {
		addInclude(doc, StdintInclude)
	}

	log.Debug().Str("variable", v.Name).Str("primitive", v.Primitive).Msg("primitive inferred")
	return nil
}

func (a *Analyzer) analyzeFunction(doc *models.Document, f *models.Function) error {
	if err := a.declare("function", f.Name); err != nil {
		return err
	}

	args := make(map[string]struct{}, len(f.Arguments))
	for _, arg := range f.Arguments {
		if err := checkIdentifier("argument", arg.Name); err != nil {
			return err
		}
		if _, exists := args[arg.Name]; exists {
			return errors.NewAnalysisError(
				fmt.Sprintf("function '%s' has duplicate argument '%s'", f.Name, arg.Name),
				errors.ErrInvalidModel,
			)
		}
		args[arg.Name] = struct{}{}

		if err := a.analyzeVariable(doc, arg, false); err != nil {
			return err
		}
	}
	return nil
}

// valueKinds summarizes the scalars found in a value.
type valueKinds struct {
	text, floats, ints, unsigned bool
	min, max                     int64
}

// inferPrimitive picks the narrowest C type that holds every scalar of v.
func (a *Analyzer) inferPrimitive(v models.Value) (string, error) {
	kinds := valueKinds{min: math.MaxInt64, max: math.MinInt64}
	collectKinds(v, &kinds)

	numeric := kinds.floats || kinds.ints || kinds.unsigned
	switch {
	case kinds.text && numeric:
		return "", fmt.Errorf("%w: mixes text and numbers", errors.ErrInvalidModel)
	case kinds.text:
		if models.IsText(v) {
			return "char", nil
		}
		return "char *", nil
	case kinds.floats:
		return "double", nil
	case kinds.unsigned:
		if kinds.min < 0 {
			return "", fmt.Errorf("%w: no integer type holds both %d and values above %d", errors.ErrInvalidModel, kinds.min, int64(math.MaxInt64))
		}
		return "uint64_t", nil
	case kinds.ints:
		if !a.config.Types.ForceInt64 && kinds.min >= math.MinInt32 && kinds.max <= math.MaxInt32 {
			return "int32_t", nil
		}
		return "int64_t", nil
	default:
		return "", fmt.Errorf("%w: no scalars to infer from", errors.ErrInvalidModel)
	}
}

// collectKinds walks every scalar, not only the first element per level.
func collectKinds(v models.Value, kinds *valueKinds) {
	stack := []models.Value{v}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch x := top.(type) {
		case models.List:
			stack = append(stack, x...)
		case models.String:
			kinds.text = true
		case models.Float:
			kinds.floats = true
		case models.Uint:
			kinds.unsigned = true
		case models.Int:
			kinds.ints = true
			kinds.min = min(kinds.min, int64(x))
			kinds.max = max(kinds.max, int64(x))
		}
	}
}

func checkIdentifier(kind, name string) error {
	if name == "" {
		return errors.NewAnalysisError(fmt.Sprintf("%s name is empty", kind), errors.ErrMissingName)
	}
	if !identifierRegex.MatchString(name) {
		return errors.NewAnalysisError(
			fmt.Sprintf("%s name '%s' is not a valid C identifier", kind, name),
			errors.ErrInvalidModel,
		)
	}
	return nil
}

func addInclude(doc *models.Document, include string) {
	include = normalizeInclude(include)
	for _, have := range doc.Includes {
		if normalizeInclude(have) == include {
			return
		}
	}
	doc.Includes = append(doc.Includes, include)
}

// normalizeIncludes quotes bare file names and drops duplicates, keeping
// the first occurrence.
func normalizeIncludes(includes []string) []string {
	seen := make(map[string]struct{}, len(includes))
	out := make([]string, 0, len(includes))
	for _, include := range includes {
		include = normalizeInclude(include)
		if include == "" {
			continue
		}
		if _, exists := seen[include]; exists {
			continue
		}
		seen[include] = struct{}{}
		out = append(out, include)
	}
	return out
}

// normalizeInclude returns include with its delimiters: "<...>" is kept,
// anything else is quoted.
func normalizeInclude(include string) string {
	include = strings.TrimSpace(include)
	if include == "" {
		return ""
	}
	if strings.HasPrefix(include, "<") || strings.HasPrefix(include, `"`) {
		return include
	}
	return `"` + include + `"`
}
