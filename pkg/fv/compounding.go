// Package fv implements the time-value-of-money math behind the calculator:
// compounding schedules, future and present value, user input parsing and
// currency formatting.
package fv

import (
	"math"

	"github.com/rotisserie/eris"
)

// Compounding is the number of times per year that interest is applied.
type Compounding float64

const (
	Annual       Compounding = 1
	Semiannually Compounding = 2
	Quarterly    Compounding = 4
	Monthly      Compounding = 12
	Weekly       Compounding = 52
	Daily        Compounding = 365
)

// Custom returns a compounding schedule with an arbitrary number of periods
// per year.
func Custom(periodsPerYear float64) (Compounding, error) {
	if periodsPerYear <= 0 || math.IsInf(periodsPerYear, 0) || math.IsNaN(periodsPerYear) {
		return 0, eris.Errorf("compounding periods must be a positive finite number, got %v", periodsPerYear)
	}

	return Compounding(periodsPerYear), nil
}

// PeriodsPerYear returns the schedule as a plain float for use in formulas.
func (c Compounding) PeriodsPerYear() float64 {
	return float64(c)
}

func (c Compounding) String() string {
	switch c {
	case Annual:
		return "Annually"
	case Semiannually:
		return "Semi-annually"
	case Quarterly:
		return "Quarterly"
	case Monthly:
		return "Monthly"
	case Weekly:
		return "Weekly"
	case Daily:
		return "Daily"
	default:
		return "Custom"
	}
}

// Option pairs a compounding schedule with the values used by the web form.
type Option struct {
	Compounding Compounding
	Value       string
	Label       string
}

// Options lists the schedules offered by the calculator UI, in display order.
func Options() []Option {
	return []Option{
		{Annual, "annual", "Annual"},
		{Semiannually, "semiannual", "Semi-annually"},
		{Quarterly, "quarterly", "Quarterly"},
		{Monthly, "monthly", "Monthly"},
		{Weekly, "weekly", "Weekly"},
		{Daily, "daily", "Daily"},
	}
}

// ParseCompounding resolves a form value (e.g. "monthly") to its schedule.
func ParseCompounding(value string) (Compounding, error) {
	for _, opt := range Options() {
		if opt.Value == value {
			return opt.Compounding, nil
		}
	}

	return 0, eris.Errorf("unknown compounding period %q", value)
}
