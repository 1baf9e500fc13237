package tabular

import (
	"fmt"
	"strconv"
)

// Sheet is a typed output grid. Cells hold nil, string, int64 or float64;
// nil renders as an empty cell.
type Sheet struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Index returns the position of column, or -1.
func (s *Sheet) Index(column string) int {
	for i, c := range s.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// FormatCell renders a sheet cell as text.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return FormatNumber(x)
	case *float64:
		if x == nil {
			return ""
		}
		return FormatNumber(*x)
	default:
		return fmt.Sprint(x)
	}
}

// Numeric returns the numeric value of a cell, if it has one.
func Numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
