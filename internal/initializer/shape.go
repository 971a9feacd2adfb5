// Package initializer renders initializer values as C literal text.
package initializer

import "github.com/mcncl/ctyper/internal/models"

// Shape returns the dimensions of a nested list by measuring each level and
// descending into its first element. Scalars, including strings, have no
// dimensions. Descent stops at the first empty list, and jagged input reports
// the shape of its first branch.
func Shape(v models.Value) []int {
	var shape []int
	list, ok := v.(models.List)
	for ok {
		shape = append(shape, len(list))
		if len(list) == 0 {
			break
		}
		list, ok = list[0].(models.List)
	}
	return shape
}
