package initializer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/ctyper/internal/errors"
	"github.com/mcncl/ctyper/internal/models"
)

// RenderScalar returns the C literal text of a single scalar. Strings are
// double-quoted verbatim and ignore f; numbers use f when it is set and their
// default decimal form otherwise.
func RenderScalar(v models.Value, f FormatSpec) (string, error) {
	switch x := v.(type) {
	case models.String:
		return `"` + string(x) + `"`, nil
	case models.Int:
		if f.IsZero() {
			return strconv.FormatInt(int64(x), 10), nil
		}
		if f.floatOnly {
			return "", integerPrecisionError(f)
		}
		return f.apply(int64(x)), nil
	case models.Uint:
		if f.IsZero() {
			return strconv.FormatUint(uint64(x), 10), nil
		}
		if f.floatOnly {
			return "", integerPrecisionError(f)
		}
		return f.apply(uint64(x)), nil
	case models.Float:
		if f.IsZero() {
			return formatFloat(float64(x)), nil
		}
		return f.apply(float64(x)), nil
	case models.List:
		return "", errors.NewConfigError("a list is not a scalar", errors.ErrUnrenderable)
	default:
		return "", errors.NewConfigError(fmt.Sprintf("%T has no C literal form", v), errors.ErrUnrenderable)
	}
}

func integerPrecisionError(f FormatSpec) error {
	return errors.NewConfigError(
		fmt.Sprintf("format %q: precision not allowed for an integer value", f.layout), errors.ErrBadFormat)
}

// formatFloat writes the shortest text that reads back as f and always shows
// a fraction or an exponent, switching to exponent form outside [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
