package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	stderrors "errors" // Standard errors package
	"github.com/mcncl/ctyper/internal/errors" // Custom errors package
	"github.com/mcncl/ctyper/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a model file.
type Format int

const (
	// FormatAuto detects JSON by a leading '{' and falls back to YAML.
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Parse reads a model from reader, detecting its format.
func Parse(reader io.Reader) (*models.Document, error) {
	return ParseWithFormat(reader, FormatAuto)
}

// ParseWithFormat reads a model in the given format from reader.
func ParseWithFormat(reader io.Reader, format Format) (*models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read model", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	if format == FormatAuto {
		format = FormatYAML
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = FormatJSON
		}
	}

	var file modelFile
	switch format {
	case FormatJSON:
		err = decodeJSON(data, &file)
	default:
		err = decodeYAML(data, &file)
	}
	if err != nil {
		return nil, err
	}

	return file.document(), nil
}

func decodeJSON(data []byte, file *modelFile) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(file); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxError) {
			return errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidModel,
			)
		}
		if stderrors.As(err, &unmarshalTypeError) {
			return errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for field %s", unmarshalTypeError.Offset, unmarshalTypeError.Field),
				errors.ErrInvalidModel,
			)
		}
		return errors.NewParsingError("failed to decode JSON model", err)
	}

	// Only whitespace may follow the model object.
	if decoder.More() {
		return errors.NewParsingError("multiple JSON values found at the root", errors.ErrInvalidModel)
	}
	return nil
}

func decodeYAML(data []byte, file *modelFile) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(file); err != nil {
		var typeError *yaml.TypeError
		if stderrors.As(err, &typeError) {
			return errors.NewParsingError(strings.Join(typeError.Errors, "; "), errors.ErrInvalidModel)
		}
		return errors.NewParsingError("failed to decode YAML model", err)
	}
	return nil
}

// document converts the decoded file into the model.
func (f *modelFile) document() *models.Document {
	doc := &models.Document{
		Name:     f.Name,
		Includes: f.Includes,
	}

	for _, d := range f.Defines {
		doc.Defines = append(doc.Defines, models.Define{Name: d.Name, Value: string(d.Value), Comment: d.Comment})
	}

	for _, e := range f.Enums {
		enum := &models.Enum{Name: e.Name, Prefix: e.Prefix}
		for _, v := range e.Values {
			enum.AddValue(v.Name, string(v.Value), v.Comment)
		}
		doc.Enums = append(doc.Enums, enum)
	}

	for _, s := range f.Structs {
		st := &models.Struct{Name: s.Name, Comment: s.Comment}
		for _, m := range s.Members {
			if m.Struct != "" {
				st.AddStruct(&models.Struct{Name: m.Struct, RefName: m.RefName, Comment: m.Comment})
				continue
			}
			st.AddVariable(m.variable())
		}
		doc.Structs = append(doc.Structs, st)
	}

	for i := range f.Variables {
		doc.Variables = append(doc.Variables, f.Variables[i].variable())
	}

	for _, fn := range f.Functions {
		function := &models.Function{
			Name:       fn.Name,
			ReturnType: fn.ReturnType,
			Comment:    fn.Comment,
			Body:       fn.Body,
		}
		for i := range fn.Arguments {
			function.AddArgument(fn.Arguments[i].variable())
		}
		doc.Functions = append(doc.Functions, function)
	}

	return doc
}

func (v *variableEntry) variable() *models.Variable {
	return &models.Variable{
		Name:       v.Name,
		Primitive:  v.Primitive,
		Qualifiers: v.Qualifiers,
		Array:      v.Array,
		Comment:    v.Comment,
		Value:      v.Value.Value,
		Format:     v.Format,
	}
}

// ParseString parses a model from a string
func ParseString(model string) (*models.Document, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(model))
}

// ParseFile parses a model from a file path. The format follows the file
// extension. The document name defaults to the file's base name and its
// source is set to the path.
func ParseFile(filePath string) (*models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() { _ = file.Close() }()

	// Check for empty file before parsing
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	doc, err := ParseWithFormat(file, FormatForPath(filePath))
	if err != nil {
		return nil, err
	}

	doc.Source = filePath
	if doc.Name == "" {
		base := filepath.Base(filePath)
		doc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}
