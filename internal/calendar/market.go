package calendar

import "strings"

// MarketDaysPerWeek is the length of the Igbo market week.
const MarketDaysPerWeek = 4

// DefaultMarketDays is the market week in cycle order.
var DefaultMarketDays = [MarketDaysPerWeek]string{"Eke", "Orie", "Afo", "Nkwo"}

// DefaultMarketAnchor is the market day assigned to the first day of a year
// when the caller does not choose one.
const DefaultMarketAnchor = "Afo"

// MarketCycle is a position in the four-day market week.
//
// It is a value type: Advance returns the next position and leaves the
// receiver untouched, which lets the year builder thread it through its
// day loop without shared state. Next is the mutating convenience form.
type MarketCycle struct {
	labels [MarketDaysPerWeek]string
	pos    int
}

// NewMarketCycle starts a cycle at the label matching anchor (case-insensitive).
// An unknown anchor starts the cycle at the first label.
func NewMarketCycle(labels [MarketDaysPerWeek]string, anchor string) MarketCycle {
	c := MarketCycle{labels: labels}
	if idx := c.IndexOf(anchor); idx >= 0 {
		c.pos = idx
	}
	return c
}

// IndexOf returns the position of label in the cycle, or -1 if absent.
func (c MarketCycle) IndexOf(label string) int {
	label = strings.TrimSpace(label)
	for i, l := range c.labels {
		if strings.EqualFold(l, label) {
			return i
		}
	}
	return -1
}

// Current returns the label at the current position.
func (c MarketCycle) Current() string {
	return c.labels[c.pos]
}

// Position returns the current index (0-3).
func (c MarketCycle) Position() int {
	return c.pos
}

// Advance returns the cycle moved forward by one day.
func (c MarketCycle) Advance() MarketCycle {
	c.pos = (c.pos + 1) % MarketDaysPerWeek
	return c
}

// Next returns the current label and moves the cycle forward by one day.
func (c *MarketCycle) Next() string {
	label := c.Current()
	*c = c.Advance()
	return label
}
