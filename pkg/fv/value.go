package fv

import (
	"math"

	"github.com/rotisserie/eris"
)

// roundCents rounds a dollar amount to two decimal places.
func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// maxAmount is the largest dollar amount the currency formatter can represent
// without overflowing its cent count.
const maxAmount = 9e15

func checkAmount(value float64, what string) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, eris.Errorf("%s is not a finite number", what)
	}

	if value > maxAmount {
		return 0, eris.Errorf("%s is too large to represent", what)
	}

	return value, nil
}

// FutureValue computes FV = P * (1 + r/n)^(n*t) rounded to cents.
// The rate is the annual interest rate as a fraction (0.04 for 4%).
func FutureValue(principal, rate float64, compounding Compounding, years float64) (float64, error) {
	n := compounding.PeriodsPerYear()
	if n <= 0 {
		return 0, eris.Errorf("invalid compounding schedule %v", n)
	}

	result := roundCents(principal * math.Pow(1+rate/n, n*years))
	return checkAmount(result, "future value")
}

// PresentValue computes PV = FV / (1 + r/n)^(n*t) rounded to cents.
func PresentValue(futureValue, rate float64, compounding Compounding, years float64) (float64, error) {
	n := compounding.PeriodsPerYear()
	if n <= 0 {
		return 0, eris.Errorf("invalid compounding schedule %v", n)
	}

	result := roundCents(futureValue / math.Pow(1+rate/n, n*years))
	return checkAmount(result, "present value")
}
