package formatter

import (
	"fmt"
	"strings"

	"github.com/mcncl/ctyper/internal/errors"
)

// Formatter normalizes generated C text: no trailing whitespace, no runs of
// blank lines, one final line feed.
type Formatter struct {
	lineFeed string
}

// NewFormatter creates a new Formatter instance that writes "\n" line feeds
func NewFormatter() *Formatter {
	return NewFormatterWithLineFeed("\n")
}

// NewFormatterWithLineFeed creates a Formatter that joins lines with lineFeed
func NewFormatterWithLineFeed(lineFeed string) *Formatter {
	if lineFeed == "" {
		lineFeed = "\n"
	}
	return &Formatter{lineFeed: lineFeed}
}

// Format returns code normalized. Code whose braces, parentheses or
// brackets do not balance outside comments and literals is rejected.
func (f *Formatter) Format(code string) (string, error) {
	// Handle empty input
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	if err := checkBalanced(code); err != nil {
		return "", errors.NewFormatError("failed to format C code", err)
	}

	code = strings.ReplaceAll(code, "\r\n", "\n")
	lines := strings.Split(code, "\n")

	out := make([]string, 0, len(lines))
	blank := true // drops leading blank lines
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}

	// Drop the trailing blank line left by the final line feed.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, f.lineFeed) + f.lineFeed, nil
}

// checkBalanced scans code for unmatched brackets, skipping comments and
// string and character literals.
func checkBalanced(code string) error {
	const (
		normal = iota
		lineComment
		blockComment
		stringLit
		charLit
	)

	var stack []byte
	line := 1
	state := normal
	pairs := map[byte]byte{'}': '{', ')': '(', ']': '['}

	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == '\n' {
			line++
		}

		switch state {
		case lineComment:
			if c == '\n' {
				state = normal
			}
		case blockComment:
			if c == '*' && i+1 < len(code) && code[i+1] == '/' {
				state = normal
				i++
			}
		case stringLit, charLit:
			quote := byte('"')
			if state == charLit {
				quote = '\''
			}
			switch {
			case c == '\\':
				i++
			case c == quote:
				state = normal
			case c == '\n':
				return fmt.Errorf("line %d: unterminated literal", line-1)
			}
		default:
			switch c {
			case '/':
				if i+1 < len(code) && code[i+1] == '/' {
					state = lineComment
					i++
				} else if i+1 < len(code) && code[i+1] == '*' {
					state = blockComment
					i++
				}
			case '"':
				state = stringLit
			case '\'':
				state = charLit
			case '{', '(', '[':
				stack = append(stack, c)
			case '}', ')', ']':
				if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
					return fmt.Errorf("line %d: unexpected '%c'", line, c)
				}
				stack = stack[:len(stack)-1]
			}
		}
	}

	if state == blockComment {
		return fmt.Errorf("unterminated comment")
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed '%c'", stack[len(stack)-1])
	}
	return nil
}
