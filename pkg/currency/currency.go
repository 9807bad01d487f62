// Package currency formats rupee amounts for conversation messages and
// rendered documents.
package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Amount renders a whole-rupee amount with digit grouping ("200,000").
func Amount(v int64) string {
	return printer.Sprintf("%d", v)
}

// Money renders a fractional amount with two decimals and digit grouping.
func Money(v float64) string {
	return printer.Sprintf("%.2f", v)
}
