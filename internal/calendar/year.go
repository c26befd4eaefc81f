package calendar

import (
	"fmt"
	"time"
)

// IgboDay is one day of an Igbo month.
type IgboDay struct {
	IgboDay             int    `json:"igbo_day"`
	GregorianDate       string `json:"gregorian_date"`
	Weekday             string `json:"weekday"`
	MarketDay           string `json:"market_day"`
	MoonSymbol          string `json:"moon_symbol"`
	MoonStage           string `json:"moon_stage"`
	IlluminationPercent int    `json:"illumination_percent"`
}

// IgboMonth is one of the 13 months of an Igbo year.
type IgboMonth struct {
	Index          int       `json:"index"`
	Name           string    `json:"name"`
	Gloss          string    `json:"gloss"`
	Theme          string    `json:"theme"`
	DayCount       int       `json:"day_count"`
	GregorianStart string    `json:"gregorian_start"`
	GregorianEnd   string    `json:"gregorian_end"`
	Days           []IgboDay `json:"days"`
}

// IgboYear is a fully materialised Igbo year. Treat it as immutable.
type IgboYear struct {
	YearIndex int         `json:"year_index"`
	Label     string      `json:"label"`
	YearStart string      `json:"year_start"`
	IsLeap    bool        `json:"is_leap"`
	TotalDays int         `json:"total_days"`
	Months    []IgboMonth `json:"months"`
}

// Day returns the day at a 1-based month and day position, if present.
func (y *IgboYear) Day(month, day int) (IgboDay, bool) {
	if month < 1 || month > len(y.Months) {
		return IgboDay{}, false
	}
	days := y.Months[month-1].Days
	if day < 1 || day > len(days) {
		return IgboDay{}, false
	}
	return days[day-1], true
}

// Builder builds Igbo years. Its fields are fixed at construction, so a
// single Builder is safe to share between goroutines.
type Builder struct {
	registry Registry
	leap     LeapRule
	window   int
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry sets the month and market-day labels.
func WithRegistry(reg Registry) Option {
	return func(b *Builder) { b.registry = reg }
}

// WithLeapRule sets the leap correction rule.
func WithLeapRule(rule LeapRule) Option {
	return func(b *Builder) { b.leap = rule }
}

// WithNewMoonWindow sets how many days either side of the approximate start
// are searched for the new moon.
func WithNewMoonWindow(days int) Option {
	return func(b *Builder) { b.window = days }
}

// NewBuilder creates a builder with the default registry, leap rule and
// new moon window, then applies opts.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		registry: DefaultRegistry(),
		leap:     DefaultLeapRule(),
		window:   DefaultNewMoonWindow,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the labels used by the builder.
func (b *Builder) Registry() Registry { return b.registry }

// LeapRule returns the leap rule used by the builder.
func (b *Builder) LeapRule() LeapRule { return b.leap }

// NewMoonWindow returns the alignment window in days.
func (b *Builder) NewMoonWindow() int { return b.window }

// cursor is the state threaded through the day loop.
type cursor struct {
	date   time.Time
	market MarketCycle
}

func (c cursor) advance() cursor {
	return cursor{
		date:   c.date.AddDate(0, 0, 1),
		market: c.market.Advance(),
	}
}

// BuildYear builds the Igbo year with the given index.
//
// approxStart only seeds the new moon search; the year starts on the
// aligned date. anchorMarketDay names the market day of the first day of
// the year; an unknown name falls back to the first market day in the
// registry.
func (b *Builder) BuildYear(approxStart time.Time, yearIndex int, anchorMarketDay string) IgboYear {
	isLeap := b.leap.IsLeapYear(yearIndex)
	start := NoonUTC(AlignToNewMoon(NoonUTC(approxStart), b.window))

	cur := cursor{
		date:   start,
		market: NewMarketCycle(b.registry.MarketDays, anchorMarketDay),
	}

	months := make([]IgboMonth, 0, MonthsPerYear)
	total := 0

	for index := 1; index <= MonthsPerYear; index++ {
		var month IgboMonth
		month, cur = b.buildMonth(index, isLeap, cur)
		total += month.DayCount
		months = append(months, month)
	}

	return IgboYear{
		YearIndex: yearIndex,
		Label:     YearLabel(start),
		YearStart: FormatDate(start),
		IsLeap:    isLeap,
		TotalDays: total,
		Months:    months,
	}
}

// buildMonth stamps one month's days starting at cur and returns the cursor
// positioned on the first day of the next month.
func (b *Builder) buildMonth(index int, isLeap bool, cur cursor) (IgboMonth, cursor) {
	labels := b.registry.Month(index)
	dayCount := DaysInMonth(index, isLeap)

	month := IgboMonth{
		Index:    index,
		Name:     labels.Name,
		Gloss:    labels.Gloss,
		Theme:    labels.Theme,
		DayCount: dayCount,
		Days:     make([]IgboDay, 0, dayCount),
	}

	for d := 1; d <= dayCount; d++ {
		moon := PhaseInfo(cur.date)
		month.Days = append(month.Days, IgboDay{
			IgboDay:             d,
			GregorianDate:       FormatDate(cur.date),
			Weekday:             DayName(cur.date),
			MarketDay:           cur.market.Current(),
			MoonSymbol:          moon.Symbol,
			MoonStage:           moon.Stage,
			IlluminationPercent: moon.IlluminationPercent,
		})
		cur = cur.advance()
	}

	if dayCount > 0 {
		month.GregorianStart = month.Days[0].GregorianDate
		month.GregorianEnd = month.Days[dayCount-1].GregorianDate
	}

	return month, cur
}

// YearLabel formats the display label for a year starting on start,
// pairing its Gregorian year with the Gregorian year 11 months later.
func YearLabel(start time.Time) string {
	end := start.AddDate(0, 11, 0)
	return fmt.Sprintf("Igbo Year %d/%d", start.Year(), end.Year())
}

var defaultBuilder = NewBuilder()

// BuildYear builds a year with the default registry, leap rule and window.
func BuildYear(approxStart time.Time, yearIndex int, anchorMarketDay string) IgboYear {
	return defaultBuilder.BuildYear(approxStart, yearIndex, anchorMarketDay)
}
