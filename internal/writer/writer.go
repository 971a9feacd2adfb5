// Package writer accumulates C source text line by line, tracking the
// indentation level, bulk comments and open preprocessor and switch blocks.
package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcncl/ctyper/internal/declaration"
	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
)

// Version is written into the autogen comment.
const Version = "0.1.0"

// CPlusPlus is the macro defined by C++ compilers.
const CPlusPlus = "__cplusplus"

// CodeWriter builds the contents of one .c or .h file. It is not safe for
// concurrent use.
type CodeWriter struct {
	lineFeed string
	indent   string

	commenting bool
	defs       []string // open #ifdef blocks
	switches   []string // open switch statements
	tabs       int
	text       strings.Builder

	now func() time.Time
}

// NewCodeWriter creates a CodeWriter. An empty lineFeed defaults to "\n" and
// an empty indent to four spaces.
func NewCodeWriter(lineFeed, indent string) *CodeWriter {
	if lineFeed == "" {
		lineFeed = "\n"
	}
	if indent == "" {
		indent = "    "
	}
	return &CodeWriter{
		lineFeed: lineFeed,
		indent:   indent,
		now:      time.Now,
	}
}

// Indent returns the indentation unit.
func (w *CodeWriter) Indent() string {
	return w.indent
}

// Tabs returns the current indentation level.
func (w *CodeWriter) Tabs() int {
	return w.tabs
}

// TabIn increases the indentation level.
func (w *CodeWriter) TabIn() {
	w.tabs++
}

// TabOut decreases the indentation level, stopping at zero.
func (w *CodeWriter) TabOut() {
	if w.tabs > 0 {
		w.tabs--
	}
}

// ResetTabs returns to column zero.
func (w *CodeWriter) ResetTabs() {
	w.tabs = 0
}

// StartComment opens a bulk comment; subsequent lines are prefixed with "* ".
func (w *CodeWriter) StartComment() {
	w.AddLine("/*", "")
	w.commenting = true
}

// EndComment closes a bulk comment.
func (w *CodeWriter) EndComment() {
	w.commenting = false
	w.AddLine("*/", "")
}

// AddAutogenComment adds a notice that the file is generated. source names
// the model the file was generated from and may be empty.
func (w *CodeWriter) AddAutogenComment(source string) {
	w.StartComment()
	w.AddLine("This file was autogenerated using ctyper v"+Version, "")
	w.AddLine("This file should not be edited directly, any changes will be overwritten next time ctyper is run", "")
	if source != "" {
		w.AddLine(fmt.Sprintf("Make any changes to the file '%s'", source), "")
	}
	w.EndComment()
}

// AddLicenseComment adds a comment block with an optional intro, one
// copyright line per author and the license text.
func (w *CodeWriter) AddLicenseComment(license string, authors []models.Author, intro string) {
	w.StartComment()

	if intro != "" {
		for _, line := range strings.Split(strings.TrimRight(intro, "\n"), "\n") {
			w.AddLine(line, "")
		}
	}

	year := w.now().Year()
	for _, author := range authors {
		email := ""
		if author.Email != "" {
			email = " <" + author.Email + ">"
		}
		w.AddLine(fmt.Sprintf("Copyright © %d %s%s", year, author.Name, email), "")
	}
	w.NewLine()

	for _, line := range strings.Split(license, "\n") {
		w.AddLine(line, "")
	}

	w.EndComment()
}

// OpenBrace writes "{" and indents.
func (w *CodeWriter) OpenBrace() {
	w.AddLine("{", "")
	w.TabIn()
}

// CloseBrace outdents and writes "}", ending the line when newLine is set.
func (w *CodeWriter) CloseBrace(newLine bool) {
	w.TabOut()
	w.Add(w.prefix() + "}")
	if newLine {
		w.Add(w.lineFeed)
	}
}

// Define adds a #define. value may be empty.
func (w *CodeWriter) Define(name, value, comment string) {
	line := "#define " + name
	if value != "" {
		line += " " + value
	}
	w.AddDirective(line, comment)
}

// StartIfDef opens an #ifdef block, or #ifndef when invert is set.
func (w *CodeWriter) StartIfDef(define string, invert bool, comment string) {
	w.defs = append(w.defs, define)
	if invert {
		w.AddDirective("#ifndef "+define, comment)
	} else {
		w.AddDirective("#ifdef "+define, comment)
	}
}

// EndIfDef closes the innermost #ifdef block, naming its macro.
func (w *CodeWriter) EndIfDef() {
	if len(w.defs) == 0 {
		w.AddDirective("#endif", "")
		return
	}
	define := w.defs[len(w.defs)-1]
	w.defs = w.defs[:len(w.defs)-1]
	w.AddDirective("#endif", define)
}

// CppEntry opens an extern "C" block for C++ compilers.
func (w *CodeWriter) CppEntry() {
	w.StartIfDef(CPlusPlus, false, "Play nice with C++ compilers")
	w.AddDirective(`extern "C" {`, "")
	w.EndIfDef()
}

// CppExit closes the block opened by CppEntry.
func (w *CodeWriter) CppExit() {
	w.StartIfDef(CPlusPlus, false, "Done playing nice with C++ compilers")
	w.AddDirective("}", "")
	w.EndIfDef()
}

// StartSwitch opens a switch statement on expr.
func (w *CodeWriter) StartSwitch(expr string) {
	w.switches = append(w.switches, expr)
	w.AddLine(fmt.Sprintf("switch (%s)", expr), "")
	w.OpenBrace()
}

// EndSwitch closes the innermost switch statement.
func (w *CodeWriter) EndSwitch() {
	w.TabOut()
	w.Add(w.prefix() + "}")
	if len(w.switches) > 0 {
		w.Add(fmt.Sprintf(" // ~switch (%s)", w.switches[len(w.switches)-1]))
		w.switches = w.switches[:len(w.switches)-1]
	}
	w.Add(w.lineFeed)
}

// AddCase adds a case label and indents its body.
func (w *CodeWriter) AddCase(label, comment string) {
	w.AddLine(fmt.Sprintf("case %s:", label), comment)
	w.TabIn()
}

// AddDefault adds the default label and indents its body.
func (w *CodeWriter) AddDefault(comment string) {
	w.AddLine("default:", comment)
	w.TabIn()
}

// BreakFromCase ends a case body with break.
func (w *CodeWriter) BreakFromCase() {
	w.AddLine("break;", "")
	w.TabOut()
}

// ReturnFromCase ends a case body with return and an optional value.
func (w *CodeWriter) ReturnFromCase(value string) {
	if value != "" {
		w.AddLine("return "+value+";", "")
	} else {
		w.AddLine("return;", "")
	}
	w.TabOut()
}

// Add appends raw text.
func (w *CodeWriter) Add(text string) {
	w.text.WriteString(text)
}

// NewLine ends the current line. Inside a bulk comment it writes an empty
// comment line.
func (w *CodeWriter) NewLine() {
	w.AddLine("", "")
}

// AddLine writes text at the current indentation followed by an optional
// trailing // comment.
func (w *CodeWriter) AddLine(text, comment string) {
	w.addLine(text, comment, false)
}

// AddDirective writes a line at column zero, as preprocessor lines are.
func (w *CodeWriter) AddDirective(text, comment string) {
	w.addLine(text, comment, true)
}

func (w *CodeWriter) addLine(text, comment string, ignoreTabs bool) {
	if text == "" && comment == "" && !w.commenting {
		w.Add(w.lineFeed)
		return
	}

	if !ignoreTabs && !w.commenting {
		w.Add(w.prefix())
	}
	if w.commenting {
		w.Add("* ")
	}

	w.Add(text)
	if comment != "" {
		if text != "" {
			w.Add(" ")
		}
		w.Add("// " + comment)
	}
	w.Add(w.lineFeed)
}

// Include adds an #include. file must carry its delimiters, e.g. "<stdint.h>"
// or `"config.h"`.
func (w *CodeWriter) Include(file, comment string) {
	w.AddDirective("#include "+file, comment)
}

// AddEnum adds a typedef'd enumeration.
func (w *CodeWriter) AddEnum(e *models.Enum) {
	w.AddLine("typedef enum", "")
	w.OpenBrace()

	for i, v := range e.Values {
		line := e.Prefix + v.Name
		if v.Value != "" {
			line += " = " + v.Value
		}
		if i < len(e.Values)-1 {
			line += ","
		}
		w.AddLine(line, v.Comment)
	}

	w.CloseBrace(false)
	w.Add(" " + e.Name + ";")
	w.Add(w.lineFeed)
}

// AddVariableDeclaration adds the declaration of v, optionally extern.
func (w *CodeWriter) AddVariableDeclaration(v *models.Variable, extern bool) {
	w.AddLine(declaration.Declare(v, extern)+";", v.Comment)
}

// AddVariableInitialization adds the definition of v with its initializer.
// Continuation lines of a multi-line initializer are indented one level
// deeper than the first.
func (w *CodeWriter) AddVariableInitialization(v *models.Variable) error {
	init, err := declaration.Initialize(v, w.indent)
	if err != nil {
		return err
	}

	lines := strings.Split(init, "\n")
	w.AddLine(lines[0], v.Comment)
	if len(lines) > 1 {
		w.TabIn()
		for _, line := range lines[1:] {
			w.AddLine(line, "")
		}
		w.TabOut()
	}
	return nil
}

// AddStruct adds a typedef'd struct. Every nested struct must have a
// reference name; otherwise nothing is written and an error is returned.
func (w *CodeWriter) AddStruct(s *models.Struct) error {
	members := make([]string, len(s.Members))
	comments := make([]string, len(s.Members))
	for i, member := range s.Members {
		switch m := member.(type) {
		case *models.Variable:
			members[i] = declaration.Declare(m, false) + ";"
			comments[i] = m.Comment
		case *models.Struct:
			decl, err := declaration.StructMember(m)
			if err != nil {
				return err
			}
			members[i] = decl
			comments[i] = m.Comment
		}
	}

	w.AddLine("typedef struct", "")
	w.OpenBrace()
	for i := range members {
		w.AddLine(members[i], comments[i])
	}
	w.CloseBrace(false)
	w.Add(" " + s.Name + ";")
	w.Add(w.lineFeed)
	return nil
}

// AddFunctionPrototype adds the prototype of f terminated by a semicolon.
func (w *CodeWriter) AddFunctionPrototype(f *models.Function, comment string) {
	w.AddLine(declaration.Prototype(f)+";", comment)
}

// AddFunctionDefinition adds the signature line of a definition of f. The
// caller writes the body, usually between OpenBrace and CloseBrace.
func (w *CodeWriter) AddFunctionDefinition(f *models.Function, comment string) {
	w.AddLine(declaration.Prototype(f), comment)
}

// CallFunction adds a call statement of f.
func (w *CodeWriter) CallFunction(f *models.Function, args ...string) error {
	call, err := declaration.Call(f, args...)
	if err != nil {
		return err
	}
	w.AddLine(call, "")
	return nil
}

// String returns the text written so far.
func (w *CodeWriter) String() string {
	return w.text.String()
}

// WriteTo implements io.WriterTo.
func (w *CodeWriter) WriteTo(out io.Writer) (int64, error) {
	n, err := io.WriteString(out, w.text.String())
	return int64(n), err
}

// WriteToFile writes the text to path, replacing any existing file.
func (w *CodeWriter) WriteToFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create file '%s'", path), err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.NewOutputError(fmt.Sprintf("failed to close file '%s'", path), cerr)
		}
	}()

	if _, err := w.WriteTo(file); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write file '%s'", path), err)
	}
	return nil
}

func (w *CodeWriter) prefix() string {
	return strings.Repeat(w.indent, w.tabs)
}
