// Package breeding implements the breeding-suitability engine: eligibility
// validation, female aptitude scoring, male reproductive-value scoring,
// candidate ranking, and the breeding-event lifecycle.
package breeding

import (
	"math"
	"time"
)

// MeanDaysPerMonth is the average month length used for interval arithmetic.
const MeanDaysPerMonth = 30.44

// WholeMonths returns the number of complete calendar months from "from" to
// "to", floored. A female born 17 months and 29 days ago has completed 17
// months, not 18.
func WholeMonths(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// WholeYears returns complete calendar years from "from" to "to", floored
// when the anniversary month or day has not been reached yet.
func WholeYears(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	years := to.Year() - from.Year()
	if int(to.Month()) < int(from.Month()) ||
		(to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// daysBetween returns the whole number of days from "from" to "to".
func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// meanMonthsBetween expresses the gap between two dates in average-length
// months (30.44 days each).
func meanMonthsBetween(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Hours() / 24 / MeanDaysPerMonth
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
