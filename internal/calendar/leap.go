package calendar

// Leap cycle constants
const (
	// MonthsPerYear is the number of months in an Igbo year.
	MonthsPerYear = 13

	// DaysPerMonth is the length of months 1 through 12.
	DaysPerMonth = 28

	// FinalMonthDays is the length of month 13 in a common year.
	FinalMonthDays = 29

	// DefaultLeapAnchorYear is the Igbo year index that starts the leap cycle.
	// The anchor year itself is a leap year.
	DefaultLeapAnchorYear = 2025

	// DefaultLeapCycle is the number of years between leap corrections.
	DefaultLeapCycle = 3
)

// LeapRule decides which Igbo years carry the extra day.
//
// The rule is independent of the Gregorian calendar: a year is a leap year
// when its distance from AnchorYear is a multiple of Cycle, in either
// direction. Gregorian leap years have no influence on it, and the extra
// day always lands on month 13.
type LeapRule struct {
	AnchorYear int `json:"anchor_year" yaml:"anchor_year"`
	Cycle      int `json:"cycle" yaml:"cycle"`
}

// DefaultLeapRule returns the 3-year cycle anchored at 2025.
func DefaultLeapRule() LeapRule {
	return LeapRule{
		AnchorYear: DefaultLeapAnchorYear,
		Cycle:      DefaultLeapCycle,
	}
}

// IsLeapYear reports whether the Igbo year with the given index is a
// correction year.
//
// Examples with the default rule:
//   - 2025 (anchor): leap
//   - 2026, 2027: common
//   - 2028, 2022: leap
func (r LeapRule) IsLeapYear(yearIndex int) bool {
	cycle := r.Cycle
	if cycle < 1 {
		cycle = DefaultLeapCycle
	}

	// Go's % keeps the sign of the dividend, so -3 % 3 == 0 and years
	// before the anchor work without adjustment.
	return (yearIndex-r.AnchorYear)%cycle == 0
}

// DaysInMonth returns the length of a month. Months 1-12 have 28 days;
// month 13 has 29, or 30 in a leap year. Indices outside 1-13 have no days.
func DaysInMonth(month int, isLeap bool) int {
	switch {
	case month >= 1 && month < MonthsPerYear:
		return DaysPerMonth
	case month == MonthsPerYear:
		if isLeap {
			return FinalMonthDays + 1
		}
		return FinalMonthDays
	default:
		return 0
	}
}

// DaysInYear returns the total length of an Igbo year: 12×28 plus the
// length of month 13, so 365 in a common year and 366 in a leap year.
func DaysInYear(isLeap bool) int {
	total := 0
	for month := 1; month <= MonthsPerYear; month++ {
		total += DaysInMonth(month, isLeap)
	}
	return total
}
