package fv

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseAmount parses a positive number typed by a user. Commas and spaces are
// accepted as grouping characters ("10,000.50"). The error messages are meant
// to be shown next to the offending form field, prefixed with fieldName.
func ParseAmount(fieldName, input string) (float64, error) {
	cleaned := strings.ReplaceAll(input, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, eris.Errorf("%s is required", fieldName)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, eris.New("Please enter a valid number (digits and decimal point only)")
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, eris.New("Invalid number format")
	}

	if value <= 0 {
		return 0, eris.Errorf("%s must be greater than zero", fieldName)
	}

	return value, nil
}
