// Package calendar implements the 13-month Igbo lunisolar calendar:
// lunar phase math, new moon alignment, the 3-year leap correction,
// the four-day market cycle and the year builder that ties them together.
package calendar

import (
	"math"
	"time"
)

// Moon constants
const (
	// SynodicMonth is the mean length of a lunation in days.
	SynodicMonth = 29.53058867

	secondsPerDay = 86400.0
)

// ReferenceNewMoon is a known new moon (2000-01-06 18:14 UTC) used as the
// epoch for phase calculation.
var ReferenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// MoonPhaseInfo describes the moon on a given day.
type MoonPhaseInfo struct {
	PhaseFraction       float64 `json:"phase_fraction"`
	Symbol              string  `json:"symbol"`
	Stage               string  `json:"stage"`
	IlluminationPercent int     `json:"illumination_percent"`
}

type moonStage struct {
	symbol string
	name   string
}

// moonStages are the eight equal-width phase buckets, new moon first.
var moonStages = [8]moonStage{
	{"🌑", "New Moon"},
	{"🌒", "Waxing Crescent"},
	{"🌓", "First Quarter"},
	{"🌔", "Waxing Gibbous"},
	{"🌕", "Full Moon"},
	{"🌖", "Waning Gibbous"},
	{"🌗", "Last Quarter"},
	{"🌘", "Waning Crescent"},
}

// PhaseAt returns the phase fraction in [0, 1) at an exact instant,
// where 0 is new moon and 0.5 is full moon.
func PhaseAt(instant time.Time) float64 {
	daysSinceReference := instant.Sub(ReferenceNewMoon).Seconds() / secondsPerDay

	age := math.Mod(daysSinceReference, SynodicMonth)
	if age < 0 {
		age += SynodicMonth
	}

	fraction := age / SynodicMonth
	// age can round up to exactly SynodicMonth for tiny negative inputs
	if fraction >= 1 {
		fraction = 0
	}
	return fraction
}

// PhaseFraction returns the phase fraction for a calendar date, measured
// at noon UTC so every date is sampled at the same time of day.
func PhaseFraction(date time.Time) float64 {
	return PhaseAt(NoonUTC(date))
}

// PhaseInfo buckets the phase of a date into one of eight named stages
// and derives the illuminated percentage of the disc.
func PhaseInfo(date time.Time) MoonPhaseInfo {
	fraction := PhaseFraction(date)

	idx := int(fraction * float64(len(moonStages)))
	if idx >= len(moonStages) {
		idx = len(moonStages) - 1
	}
	stage := moonStages[idx]

	return MoonPhaseInfo{
		PhaseFraction:       fraction,
		Symbol:              stage.symbol,
		Stage:               stage.name,
		IlluminationPercent: Illumination(fraction),
	}
}

// Illumination converts a phase fraction into a whole illuminated percentage.
func Illumination(fraction float64) int {
	return int(math.Round(50 * (1 - math.Cos(2*math.Pi*fraction))))
}
