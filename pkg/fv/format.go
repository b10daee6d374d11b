package fv

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var enUS = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a dollar amount with en-US thousands separators and
// exactly two cent digits, e.g. 1628.89 -> "$1,628.89".
func FormatUSD(amount float64) string {
	totalCents := int64(math.Round(amount * 100))
	cents := totalCents % 100
	if cents < 0 {
		cents = -cents
	}

	return enUS.Sprintf("$%d.%02d", totalCents/100, cents)
}
