// Package declaration composes single-line C declarations, definitions,
// prototypes and calls from model entities.
package declaration

import (
	"fmt"
	"strings"

	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/initializer"
	"github.com/mcncl/ctyper/internal/models"
)

// Declare returns the declaration of v without a trailing semicolon, e.g.
// "extern const uint8_t table[4][4]". An extern declaration never carries
// the initializer, but dimensions are still inferred from the value.
func Declare(v *models.Variable, extern bool) string {
	var b strings.Builder
	if extern {
		b.WriteString("extern ")
	}
	b.WriteString(qualifierPrefix(v.Qualifiers))
	b.WriteString(v.Primitive)
	b.WriteByte(' ')
	b.WriteString(v.Name)
	b.WriteString(ArraySuffix(v))
	return b.String()
}

// ArraySuffix returns the bracketed dimensions of v. Explicit dimensions win;
// otherwise a string value yields "[]" and a list value one bracket pair per
// inferred dimension. Scalars get no suffix.
func ArraySuffix(v *models.Variable) string {
	var dims []string
	switch {
	case len(v.Array) > 0:
		dims = v.Array
	case models.IsText(v.Value):
		return "[]"
	default:
		for _, n := range initializer.Shape(v.Value) {
			dims = append(dims, fmt.Sprint(n))
		}
	}

	var b strings.Builder
	for _, d := range dims {
		b.WriteString("[" + d + "]")
	}
	return b.String()
}

// Initialize returns the definition of v with its initializer, e.g.
// "const int x[3] = {1, 2, 3};". Multi-dimensional initializers span several
// lines already indented relative to the first one.
func Initialize(v *models.Variable, indent string) (string, error) {
	if v.Value == nil {
		return "", errors.NewConfigError(fmt.Sprintf("variable %q has no value to initialize with", v.Name), errors.ErrUnrenderable)
	}
	format, err := initializer.ParseFormat(v.Format)
	if err != nil {
		return "", err
	}
	assignment, err := initializer.Assignment(v.Value, indent, format)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s;", Declare(v, false), assignment), nil
}

// StructMember returns the field declaration of a struct embedded in another
// struct. The embedded struct must have a reference name.
func StructMember(s *models.Struct) (string, error) {
	if s.RefName == "" {
		return "", errors.NewConfigError(fmt.Sprintf("no ref_name supplied for struct %q", s.Name), errors.ErrMissingRefName)
	}
	return fmt.Sprintf("%s %s;", s.Name, s.RefName), nil
}

// Prototype returns the function signature without a trailing semicolon.
func Prototype(f *models.Function) string {
	args := "void"
	if len(f.Arguments) > 0 {
		decls := make([]string, len(f.Arguments))
		for i, arg := range f.Arguments {
			decls[i] = Declare(arg, false)
		}
		args = strings.Join(decls, ", ")
	}
	return fmt.Sprintf("%s %s(%s)", ReturnType(f), f.Name, args)
}

// ReturnType returns the declared return type of f, defaulting to void.
func ReturnType(f *models.Function) string {
	if f.ReturnType == "" {
		return "void"
	}
	return f.ReturnType
}

// Call returns a call statement of f with the given argument expressions.
func Call(f *models.Function, args ...string) (string, error) {
	if len(args) != len(f.Arguments) {
		return "", errors.NewConfigError(
			fmt.Sprintf("%s takes %d arguments, got %d", f.Name, len(f.Arguments), len(args)),
			errors.ErrArgumentCount)
	}
	return fmt.Sprintf("%s(%s);", f.Name, strings.Join(args, ", ")), nil
}

func qualifierPrefix(qualifiers []string) string {
	if len(qualifiers) == 0 {
		return ""
	}
	return strings.Join(qualifiers, " ") + " "
}
