package calendar

import "time"

// DefaultNewMoonWindow is the number of days searched on each side of the
// approximate start date.
const DefaultNewMoonWindow = 5

// AlignToNewMoon returns the date within windowDays of target whose phase
// fraction is smallest, i.e. the day closest to (and not before) the new moon.
//
// Candidates are scanned in ascending order from target-windowDays to
// target+windowDays and the first minimum wins, so ties are deterministic.
// A window of zero returns target unchanged. Negative windows are treated
// as zero.
func AlignToNewMoon(target time.Time, windowDays int) time.Time {
	if windowDays <= 0 {
		return target
	}

	best := target
	bestFraction := 2.0 // above any valid fraction

	for offset := -windowDays; offset <= windowDays; offset++ {
		candidate := target.AddDate(0, 0, offset)
		fraction := PhaseFraction(candidate)
		if fraction < bestFraction {
			best = candidate
			bestFraction = fraction
		}
	}

	return best
}
