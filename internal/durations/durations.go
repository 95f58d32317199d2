// Package durations canonicalizes free-text duration expressions ("2 years",
// "twelve months", "Session") into integer days. Absence of a recognizable
// duration is a normal state, reported as nil rather than an error.
package durations

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Conversion factors to days. Months and years use the fixed calendar
// approximations the disclosure tables themselves tend to assume.
const (
	daysPerMinute = 1.0 / 1440.0
	daysPerHour   = 1.0 / 24.0
	daysPerWeek   = 7.0
	daysPerMonth  = 30.0
	daysPerYear   = 365.0
)

var wordNumbers = map[string]float64{
	"a": 1, "an": 1,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var durationRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?|seventy|twenty|thirty|eighty|ninety|eleven|twelve|forty|fifty|sixty|three|seven|eight|four|five|nine|one|two|six|ten|an|a)\s*(minute|hour|day|week|month|year)s?\b`)

var sessionRe = regexp.MustCompile(`(?i)session|few seconds`)

// ToDays converts a text fragment into whole days, or nil when no duration is
// present. "Session" (and "a few seconds") count as zero days.
func ToDays(text string) *int {
	if text == "" {
		return nil
	}
	if sessionRe.MatchString(text) {
		zero := 0
		return &zero
	}
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	d := toDaysFromMatch(m[1], m[2])
	return &d
}

func toDaysFromMatch(number, unit string) int {
	var n float64
	if v, ok := wordNumbers[strings.ToLower(number)]; ok {
		n = v
	} else {
		n, _ = strconv.ParseFloat(number, 64)
	}

	var factor float64
	switch strings.ToLower(unit) {
	case "minute":
		factor = daysPerMinute
	case "hour":
		factor = daysPerHour
	case "day":
		factor = 1
	case "week":
		factor = daysPerWeek
	case "month":
		factor = daysPerMonth
	default:
		factor = daysPerYear
	}

	days := int(math.Round(n * factor))
	if days < 0 {
		return 0
	}
	return days
}

// FindDuration returns the first duration expression mentioned in text, or
// the empty string when there is none.
func FindDuration(text string) string {
	return durationRe.FindString(text)
}

// MaxDaysFromRow returns the longest duration mentioned in a cookie table
// row, checking the dedicated lifespan cell first and falling back to the
// raw row text. Rows with only session-like wording (or nothing) yield 0.
func MaxDaysFromRow(lifespanText, rawRowText string) int {
	blob := lifespanText + " | " + rawRowText
	matches := durationRe.FindAllStringSubmatch(blob, -1)
	max := 0
	for _, m := range matches {
		if d := toDaysFromMatch(m[1], m[2]); d > max {
			max = d
		}
	}
	return max
}

/// Percentile75 is the 75th percentile of values: sort ascending, take the
// element at ceil(0.75*n)-1. An empty slice yields 0.
func Percentile75(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	idx := int(math.Ceil(0.75*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
