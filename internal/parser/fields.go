package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcncl/ctyper/internal/models"
	"gopkg.in/yaml.v3"
)

// modelFile is the on-disk layout of a model, shared by YAML and JSON.
type modelFile struct {
	Name      string          `yaml:"name" json:"name"`
	Includes  []string        `yaml:"includes" json:"includes"`
	Defines   []defineEntry   `yaml:"defines" json:"defines"`
	Enums     []enumEntry     `yaml:"enums" json:"enums"`
	Structs   []structEntry   `yaml:"structs" json:"structs"`
	Variables []variableEntry `yaml:"variables" json:"variables"`
	Functions []functionEntry `yaml:"functions" json:"functions"`
}

type defineEntry struct {
	Name    string `yaml:"name" json:"name"`
	Value   Text   `yaml:"value" json:"value"`
	Comment string `yaml:"comment" json:"comment"`
}

type enumEntry struct {
	Name   string           `yaml:"name" json:"name"`
	Prefix string           `yaml:"prefix" json:"prefix"`
	Values []enumValueEntry `yaml:"values" json:"values"`
}

// enumValueEntry is either a bare name or a mapping with name, value and
// comment.
type enumValueEntry struct {
	Name    string `yaml:"name" json:"name"`
	Value   Text   `yaml:"value" json:"value"`
	Comment string `yaml:"comment" json:"comment"`
}

type enumValueFields enumValueEntry

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *enumValueEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*e = enumValueEntry{Name: node.Value}
		return nil
	}
	var fields enumValueFields
	if err := node.Decode(&fields); err != nil {
		return err
	}
	*e = enumValueEntry(fields)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *enumValueEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*e = enumValueEntry{Name: name}
		return nil
	}
	var fields enumValueFields
	if err := strictJSON(data, &fields); err != nil {
		return err
	}
	*e = enumValueEntry(fields)
	return nil
}

type structEntry struct {
	Name    string        `yaml:"name" json:"name"`
	Comment string        `yaml:"comment" json:"comment"`
	Members []memberEntry `yaml:"members" json:"members"`
}

// memberEntry is a variable, or a reference to another struct when Struct
// is set.
type memberEntry struct {
	variableEntry `yaml:",inline"`
	Struct        string `yaml:"struct" json:"struct"`
	RefName       string `yaml:"ref_name" json:"ref_name"`
}

type variableEntry struct {
	Name       string     `yaml:"name" json:"name"`
	Primitive  string     `yaml:"primitive" json:"primitive"`
	Qualifiers Words      `yaml:"qualifiers" json:"qualifiers"`
	Array      Dimensions `yaml:"array" json:"array"`
	Value      Literal    `yaml:"value" json:"value"`
	Format     string     `yaml:"format" json:"format"`
	Comment    string     `yaml:"comment" json:"comment"`
}

type functionEntry struct {
	Name       string          `yaml:"name" json:"name"`
	ReturnType string          `yaml:"return_type" json:"return_type"`
	Arguments  []variableEntry `yaml:"arguments" json:"arguments"`
	Body       []string        `yaml:"body" json:"body"`
	Comment    string          `yaml:"comment" json:"comment"`
}

// Text is a scalar written as a string or a number, kept as its source text.
type Text string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar, got %s", node.Line, node.Tag)
	}
	*t = Text(node.Value)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	raw, err := decodeNumbers(data)
	if err != nil {
		return err
	}
	s, ok := scalarText(raw)
	if !ok {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*t = Text(s)
	return nil
}

// Words is a list of words written either as a YAML/JSON list or as one
// space-separated string, e.g. "static const".
type Words []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Words) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*w = strings.Fields(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*w = list
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Words) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = strings.Fields(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("qualifiers must be a string or an array of strings")
	}
	*w = list
	return nil
}

// Dimensions holds explicit array dimensions. Each dimension is a number, a
// macro name, or "" for an unsized dimension.
type Dimensions []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Dimensions) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*d = Dimensions{node.Value}
	case yaml.SequenceNode:
		dims := make(Dimensions, 0, len(node.Content))
		for _, child := range node.Content {
			if child.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: array dimension must be a number or a name", child.Line)
			}
			dims = append(dims, child.Value)
		}
		*d = dims
	default:
		return fmt.Errorf("line %d: array must be a dimension or a list of dimensions", node.Line)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dimensions) UnmarshalJSON(data []byte) error {
	raw, err := decodeNumbers(data)
	if err != nil {
		return err
	}
	if s, ok := scalarText(raw); ok {
		*d = Dimensions{s}
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("array must be a dimension or a list of dimensions")
	}
	dims := make(Dimensions, 0, len(list))
	for _, item := range list {
		s, ok := scalarText(item)
		if !ok {
			return fmt.Errorf("array dimension must be a number or a name")
		}
		dims = append(dims, s)
	}
	*d = dims
	return nil
}

// Literal is an initializer value: a number, a string, or nested lists of
// them.
type Literal struct {
	Value models.Value
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := models.FromAny(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	l.Value = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Literal) UnmarshalJSON(data []byte) error {
	raw, err := decodeNumbers(data)
	if err != nil {
		return err
	}
	if raw == nil {
		// null is the same as no value, as in YAML
		return nil
	}
	v, err := models.FromAny(raw)
	if err != nil {
		return err
	}
	l.Value = v
	return nil
}

// decodeNumbers decodes a JSON fragment keeping numbers as json.Number.
func decodeNumbers(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func strictJSON(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func scalarText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
