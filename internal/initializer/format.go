package initializer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/ctyper/internal/errors"
)

var (
	// {0:x}, {:#04X}, {0}, {}
	fieldRegex = regexp.MustCompile(`\{(\d*)(?::([^{}]*))?\}`)
	// [sign][#][0][width][.precision][type]
	fieldSpecRegex = regexp.MustCompile(`^([+\- ]?)(#?)(0?)(\d*)(?:\.(\d+))?([bdoxXeEfFgG]?)$`)
	// %[flags][width][.precision]verb
	directiveRegex = regexp.MustCompile(`%[+\-# 0]*\d*(?:\.\d+)?[a-zA-Z]`)

	// doubled braces are literal text in replacement-field formats
	braceEscapes = strings.NewReplacer("{{", "\x00", "}}", "\x01")
	braceRestore = strings.NewReplacer("\x00", "{", "\x01", "}")
)

const (
	intVerbs   = "bcdoOxX"
	floatVerbs = "eEfFgG"

	// verbs that write a C numeric literal
	directiveVerbs = "bdoOxX" + floatVerbs + "v"
)

// FormatSpec controls how numeric scalars are written. The zero value selects
// the default decimal rendering.
type FormatSpec struct {
	layout string // fmt layout holding exactly one directive
	verb   byte

	// floatOnly is set for a replacement field with a precision but no
	// type, which only floats accept
	floatOnly bool
}

// ParseFormat parses a per-value format string. Both fmt directives ("%x",
// "%#06x", "%.2f") and replacement fields ("{0:x}", "0x{:02X}u") are
// accepted; text around the directive or field is kept verbatim. An empty
// string yields the zero FormatSpec.
func ParseFormat(s string) (FormatSpec, error) {
	if s == "" {
		return FormatSpec{}, nil
	}
	if strings.Contains(s, "{") {
		return parseField(s)
	}
	return parseDirective(s)
}

// MustParseFormat is like ParseFormat but panics on error.
func MustParseFormat(s string) FormatSpec {
	f, err := ParseFormat(s)
	if err != nil {
		panic(err)
	}
	return f
}

// IsZero reports whether f selects the default rendering.
func (f FormatSpec) IsZero() bool {
	return f.layout == ""
}

// String returns the fmt layout.
func (f FormatSpec) String() string {
	return f.layout
}

func (f FormatSpec) apply(arg any) string {
	switch x := arg.(type) {
	case int64:
		if strings.IndexByte(floatVerbs, f.verb) >= 0 {
			return fmt.Sprintf(f.layout, float64(x))
		}
	case uint64:
		if strings.IndexByte(floatVerbs, f.verb) >= 0 {
			return fmt.Sprintf(f.layout, float64(x))
		}
	case float64:
		if strings.IndexByte(intVerbs, f.verb) >= 0 {
			return fmt.Sprintf(f.layout, int64(x))
		}
	}
	return fmt.Sprintf(f.layout, arg)
}

func parseDirective(s string) (FormatSpec, error) {
	// %% is a literal percent sign, not a directive
	stripped := strings.ReplaceAll(s, "%%", "")
	directives := directiveRegex.FindAllString(stripped, -1)
	if len(directives) != 1 || strings.Count(stripped, "%") != 1 {
		return FormatSpec{}, errors.NewConfigError(
			fmt.Sprintf("format %q must contain exactly one directive", s), errors.ErrBadFormat)
	}
	d := directives[0]
	verb := d[len(d)-1]
	if strings.IndexByte(directiveVerbs, verb) < 0 {
		return FormatSpec{}, errors.NewConfigError(
			fmt.Sprintf("format %q: verb %%%c does not write a number", s, verb), errors.ErrBadFormat)
	}
	return FormatSpec{layout: s, verb: verb}, nil
}

func parseField(s string) (FormatSpec, error) {
	masked := braceEscapes.Replace(s)
	fields := fieldRegex.FindAllStringSubmatchIndex(masked, -1)
	if len(fields) != 1 {
		return FormatSpec{}, errors.NewConfigError(
			fmt.Sprintf("format %q must contain exactly one replacement field", s), errors.ErrBadFormat)
	}
	loc := fields[0]
	if index := masked[loc[2]:loc[3]]; index != "" && index != "0" {
		return FormatSpec{}, errors.NewConfigError(
			fmt.Sprintf("format %q refers to argument %s, only one value is formatted", s, index), errors.ErrBadFormat)
	}

	spec := ""
	if loc[4] >= 0 {
		spec = masked[loc[4]:loc[5]]
	}
	if spec == "" && loc[0] == 0 && loc[1] == len(masked) {
		// a bare "{}" or "{0}" is the default rendering
		return FormatSpec{}, nil
	}
	directive, verb, err := fieldDirective(spec)
	if err != nil {
		return FormatSpec{}, errors.NewConfigError(fmt.Sprintf("format %q: %v", s, err), errors.ErrBadFormat)
	}

	literal := func(text string) string {
		return strings.ReplaceAll(braceRestore.Replace(text), "%", "%%")
	}
	return FormatSpec{
		layout:    literal(masked[:loc[0]]) + directive + literal(masked[loc[1]:]),
		verb:      verb,
		floatOnly: verb == 'v' && strings.Contains(directive, "."),
	}, nil
}

// fieldDirective translates the spec part of a replacement field into a fmt
// directive.
func fieldDirective(spec string) (string, byte, error) {
	m := fieldSpecRegex.FindStringSubmatch(spec)
	if m == nil {
		return "", 0, fmt.Errorf("unsupported format spec %q", spec)
	}
	sign, alt, zero, width, precision, typ := m[1], m[2], m[3], m[4], m[5], m[6]

	verb := byte('v')
	if typ != "" {
		verb = typ[0]
	}
	if precision != "" && strings.IndexByte("bdoxX", verb) >= 0 {
		return "", 0, fmt.Errorf("precision not allowed in integer format specifier %q", spec)
	}
	if alt != "" && zero != "" && width != "" && strings.IndexByte("xXbo", verb) >= 0 {
		// fmt pads the digits only, the field width also covers the 0x prefix
		w, _ := strconv.Atoi(width)
		width = strconv.Itoa(max(w-2, 0))
	}
	switch {
	case verb == 'o' && alt != "":
		// %O writes the 0o prefix, %#o only a leading zero
		verb, alt = 'O', ""
	case (verb == 'g' || verb == 'G') && precision == "":
		precision = "6"
	}

	var b strings.Builder
	b.WriteByte('%')
	if sign == "+" || sign == " " {
		b.WriteString(sign)
	}
	b.WriteString(alt)
	b.WriteString(zero)
	b.WriteString(width)
	if precision != "" {
		b.WriteString("." + precision)
	}
	b.WriteByte(verb)
	return b.String(), verb, nil
}
