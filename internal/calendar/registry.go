package calendar

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MonthLabel holds the display labels for one month.
type MonthLabel struct {
	Name  string `json:"name" yaml:"name"`
	Gloss string `json:"gloss" yaml:"gloss"`
	Theme string `json:"theme" yaml:"theme"`
}

// Registry is the label data the builder stamps onto a year. Labels are data,
// not behavior: swapping the registry never changes any date arithmetic.
type Registry struct {
	Months     [MonthsPerYear]MonthLabel
	MarketDays [MarketDaysPerWeek]string
}

// DefaultRegistry returns the standard Igbo month names and market week.
func DefaultRegistry() Registry {
	return Registry{
		Months: [MonthsPerYear]MonthLabel{
			{Name: "Ọnwa Mbụ", Gloss: "First Moon", Theme: "New year, clearing of farmland"},
			{Name: "Ọnwa Abụọ", Gloss: "Second Moon", Theme: "Burning and preparing the land"},
			{Name: "Ọnwa Ife Eke", Gloss: "Third Moon", Theme: "Yam planting"},
			{Name: "Ọnwa Anọ", Gloss: "Fourth Moon", Theme: "Planting of cocoyam and maize"},
			{Name: "Ọnwa Agwụ", Gloss: "Fifth Moon", Theme: "Honouring Agwụ, weeding"},
			{Name: "Ọnwa Ifejiọkụ", Gloss: "Sixth Moon", Theme: "Rites of the yam spirit"},
			{Name: "Ọnwa Alọm Chi", Gloss: "Seventh Moon", Theme: "Staking and tending of yams"},
			{Name: "Ọnwa Ilo Mmụọ", Gloss: "Eighth Moon", Theme: "Festival of the ancestors"},
			{Name: "Ọnwa Ana", Gloss: "Ninth Moon", Theme: "Honouring the earth"},
			{Name: "Ọnwa Okike", Gloss: "Tenth Moon", Theme: "Creation and new yam"},
			{Name: "Ọnwa Ajana", Gloss: "Eleventh Moon", Theme: "Harvest"},
			{Name: "Ọnwa Ede Ajana", Gloss: "Twelfth Moon", Theme: "Cocoyam harvest"},
			{Name: "Ọnwa Ụzọ Alụsị", Gloss: "Thirteenth Moon", Theme: "Rites of passage, close of the year"},
		},
		MarketDays: DefaultMarketDays,
	}
}

// Month returns the labels for a 1-based month index.
func (r Registry) Month(index int) MonthLabel {
	if index < 1 || index > MonthsPerYear {
		return MonthLabel{}
	}
	return r.Months[index-1]
}

// Validate checks that every month has a name and that the market days are
// non-empty and distinct.
func (r Registry) Validate() error {
	var errs []error

	for i, m := range r.Months {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("month %d has no name", i+1))
		}
	}

	seen := make(map[string]bool, MarketDaysPerWeek)
	for i, d := range r.MarketDays {
		key := strings.ToLower(strings.TrimSpace(d))
		if key == "" {
			errs = append(errs, fmt.Errorf("market day %d is empty", i+1))
			continue
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("market day %q is repeated", d))
		}
		seen[key] = true
	}

	return errors.Join(errs...)
}

// registryFile is the YAML shape of a label registry.
//
//	market_days: [Eke, Orie, Afo, Nkwo]
//	months:
//	  - name: Ọnwa Mbụ
//	    gloss: First Moon
//	    theme: New year
type registryFile struct {
	MarketDays []string     `yaml:"market_days"`
	Months     []MonthLabel `yaml:"months"`
}

// ParseRegistry decodes a YAML label registry.
func ParseRegistry(data []byte) (Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Registry{}, fmt.Errorf("parse registry: %w", err)
	}

	if len(file.Months) != MonthsPerYear {
		return Registry{}, fmt.Errorf("registry must list %d months, got %d", MonthsPerYear, len(file.Months))
	}
	if len(file.MarketDays) != MarketDaysPerWeek {
		return Registry{}, fmt.Errorf("registry must list %d market days, got %d", MarketDaysPerWeek, len(file.MarketDays))
	}

	var reg Registry
	copy(reg.Months[:], file.Months)
	copy(reg.MarketDays[:], file.MarketDays)

	if err := reg.Validate(); err != nil {
		return Registry{}, fmt.Errorf("invalid registry: %w", err)
	}

	return reg, nil
}

// LoadRegistry reads a YAML label registry from disk.
func LoadRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("read registry: %w", err)
	}
	return ParseRegistry(data)
}
