package display

import (
	"fmt"
	"strconv"
)

// FormatNumber applies the table rounding rule: 2 decimals for values in
// [1, 100], 1 decimal above 100, 3 decimals below 1.
func FormatNumber(v float64) string {
	switch {
	case v >= 1 && v <= 100:
		return fmt.Sprintf("%.2f", v)
	case v > 100:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// FormatCell formats a raw report cell; non-numeric cells pass through.
func FormatCell(cell string) string {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return FormatNumber(v)
}
