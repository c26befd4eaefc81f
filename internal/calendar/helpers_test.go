package calendar

import "time"

// daysBetween returns the number of whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(NoonUTC(b).Sub(NoonUTC(a)).Hours() / 24)
}
