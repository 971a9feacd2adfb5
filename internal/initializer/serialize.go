package initializer

import (
	"strings"

	"github.com/mcncl/ctyper/internal/models"
)

type itemKind int

const (
	itemValue itemKind = iota
	itemOpen
	itemClose
)

// workItem is an entry of the traversal stack: a value still to be visited
// or a brace marker produced by expanding a list.
type workItem struct {
	kind  itemKind
	value models.Value
}

// opensList reports whether emitting w starts a new brace level.
func (w workItem) opensList() bool {
	return w.kind == itemOpen || (w.kind == itemValue && models.IsList(w.value))
}

// Serialize renders v as a brace-delimited C initializer whose nesting
// mirrors the nesting of v. Scalars are separated by ", " and nested lists
// are placed on their own lines indented by indent per level. A value with
// more than one dimension starts with a newline so that the initializer
// begins below its declaration.
//
// The traversal keeps an explicit stack instead of recursing, so arbitrarily
// deep input cannot exhaust the call stack.
func Serialize(v models.Value, indent string, f FormatSpec) (string, error) {
	var out strings.Builder
	if len(Shape(v)) > 1 {
		out.WriteByte('\n')
	}

	stack := []workItem{{kind: itemValue, value: v}}
	depth := 0
	leadingComma := false

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch top.kind {
		case itemOpen:
			if leadingComma {
				// a nested list following a scalar sibling
				out.WriteString(", ")
			}
			out.WriteByte('{')
			depth++
			// the matching close marker is always below, so the stack is not empty
			if stack[len(stack)-1].opensList() {
				out.WriteString("\n" + indentBy(indent, depth))
			}
			leadingComma = false

		case itemClose:
			if depth > 0 {
				depth--
			}
			out.WriteByte('}')
			if len(stack) == 0 {
				continue
			}
			if stack[len(stack)-1].kind == itemClose {
				out.WriteString("\n" + indentBy(indent, depth-1))
			} else {
				out.WriteString(",\n" + indentBy(indent, depth))
			}
			leadingComma = false

		default:
			if list, ok := top.value.(models.List); ok {
				stack = append(stack, workItem{kind: itemClose})
				for i := len(list) - 1; i >= 0; i-- {
					stack = append(stack, workItem{kind: itemValue, value: list[i]})
				}
				stack = append(stack, workItem{kind: itemOpen})
				continue
			}

			if leadingComma {
				out.WriteString(", ")
			} else {
				leadingComma = true
			}
			text, err := RenderScalar(top.value, f)
			if err != nil {
				return "", err
			}
			out.WriteString(text)
		}
	}

	return out.String(), nil
}

// Assignment returns the text that follows "=" in a definition of v.
func Assignment(v models.Value, indent string, f FormatSpec) (string, error) {
	if models.IsList(v) {
		return Serialize(v, indent, f)
	}
	return RenderScalar(v, f)
}

func indentBy(unit string, depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(unit, depth)
}
