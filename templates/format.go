// Package templates renders the stock viewer UI. Components are authored in
// *.templ files and compiled by `templ generate` into the *_templ.go files
// beside them; every component is a pure function of the view state it is given.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money formats a price as dollars with two decimals
func Money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// Percent formats a percentage with two decimals
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
