package models

// Variable is a C variable, struct field or function parameter.
type Variable struct {
	Name      string
	Primitive string

	// Qualifiers are rendered in order before the primitive, e.g. "static", "const".
	Qualifiers []string

	// Array holds explicit dimensions rendered verbatim inside brackets.
	// When empty the dimensions are inferred from Value.
	Array   []string
	Comment string
	Value   Value

	// Format is applied to every numeric scalar of Value.
	Format string
}

// HasQualifier reports whether q is among the variable's qualifiers.
func (v *Variable) HasQualifier(q string) bool {
	for _, have := range v.Qualifiers {
		if have == q {
			return true
		}
	}
	return false
}

// Member is an entry of a struct: either a *Variable or a nested *Struct.
type Member interface {
	isMember()
}

func (*Variable) isMember() {}
func (*Struct) isMember()   {}

// Struct is a typedef'd C struct. RefName is the field name used when the
// struct is embedded in another struct.
type Struct struct {
	Name    string
	RefName string
	Comment string
	Members []Member
}

// AddVariable appends a field.
func (s *Struct) AddVariable(v *Variable) {
	s.Members = append(s.Members, v)
}

// AddStruct appends a nested struct field.
func (s *Struct) AddStruct(inner *Struct) {
	s.Members = append(s.Members, inner)
}

// EnumValue is a single enumerator. Value is rendered verbatim when set.
type EnumValue struct {
	Name    string
	Value   string
	Comment string
}

// Enum is a typedef'd C enumeration. Prefix is prepended to every value name.
type Enum struct {
	Name   string
	Prefix string
	Values []EnumValue
}

// AddValue appends an enumerator; values are emitted in insertion order.
func (e *Enum) AddValue(name, value, comment string) {
	e.Values = append(e.Values, EnumValue{Name: name, Value: value, Comment: comment})
}

// Function is a C function prototype with an optional body for definitions.
type Function struct {
	Name       string
	ReturnType string
	Arguments  []*Variable
	Comment    string
	Body       []string
}

// AddArgument appends a parameter.
func (f *Function) AddArgument(v *Variable) {
	f.Arguments = append(f.Arguments, v)
}

// Define is a preprocessor macro.
type Define struct {
	Name    string
	Value   string
	Comment string
}

// Document is the complete model of one header/source pair.
type Document struct {
	// Name is the base file name, e.g. "example" for example.h and example.c.
	Name string

	// Source names the model file in the autogen comment.
	Source string

	Includes []string
	Defines  []Define
	Enums    []*Enum
	Structs  []*Struct

	// Variables are declared extern in the header and initialized in the
	// source, except static ones which only appear in the source.
	Variables []*Variable

	Functions []*Function
}

// Author is credited in the license comment of generated files.
type Author struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}
