// Package almanac sits between callers and the calendar engine. It decides
// what to feed the engine (stored seeds, defaults), memoises the results
// and fans out multi-year requests.
package almanac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/database"
)

// Range limits
const (
	// MaxYearsPerRequest caps Years.
	MaxYearsPerRequest = 10

	// buildConcurrency caps the number of years built at once.
	buildConcurrency = 4

	// cacheVersion is bumped whenever the encoded year shape changes.
	cacheVersion = "v1"
)

var (
	// ErrInvalidRequest is returned for out-of-range arguments.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDateNotCovered is returned by Locate when a date falls between
	// two aligned years.
	ErrDateNotCovered = errors.New("date not covered by any Igbo year")
)

// Store is the persistence the service needs. *database.DB satisfies it.
type Store interface {
	GetSeed(ctx context.Context, yearIndex int) (*database.YearSeed, error)
	ListSeeds(ctx context.Context) ([]database.YearSeed, error)
	UpsertSeed(ctx context.Context, seed *database.YearSeed) error
	DeleteSeed(ctx context.Context, yearIndex int) error
	GetCachedYear(ctx context.Context, key string) (*database.CachedYear, error)
	PutCachedYear(ctx context.Context, key string, yearIndex int, payload []byte) error
	PurgeCachedYears(ctx context.Context, yearIndex int) (int64, error)
}

// Options controls how requests are resolved.
type Options struct {
	DefaultMarketDay string     // used when neither request nor seed names one
	SeedMonth        time.Month // default approximate start month
	SeedDay          int        // default approximate start day
	CacheEnabled     bool
}

// DefaultOptions returns February 1 seeds, the Afo anchor and caching on.
func DefaultOptions() Options {
	return Options{
		DefaultMarketDay: calendar.DefaultMarketAnchor,
		SeedMonth:        time.February,
		SeedDay:          1,
		CacheEnabled:     true,
	}
}

// Service resolves, builds and caches Igbo years.
type Service struct {
	store   Store
	builder *calendar.Builder
	opts    Options
	logger  *slog.Logger
	labels  string // registry fingerprint for cache keys
}

// NewService creates a service. A nil builder uses the engine defaults and
// a nil logger uses slog.Default().
func NewService(store Store, builder *calendar.Builder, opts Options, logger *slog.Logger) *Service {
	if builder == nil {
		builder = calendar.NewBuilder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SeedMonth == 0 {
		opts.SeedMonth = time.February
	}
	if opts.SeedDay == 0 {
		opts.SeedDay = 1
	}
	if opts.DefaultMarketDay == "" {
		opts.DefaultMarketDay = calendar.DefaultMarketAnchor
	}
	return &Service{
		store:   store,
		builder: builder,
		opts:    opts,
		logger:  logger,
		labels:  registryFingerprint(builder.Registry()),
	}
}

func registryFingerprint(reg calendar.Registry) string {
	h := fnv.New32a()
	for _, m := range reg.Months {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00", m.Name, m.Gloss, m.Theme)
	}
	for _, d := range reg.MarketDays {
		fmt.Fprintf(h, "%s\x00", d)
	}
	return fmt.Sprintf("%08x", h.Sum32())
}

// YearRequest asks for one Igbo year. Zero values mean "resolve it".
type YearRequest struct {
	YearIndex   int
	ApproxStart *time.Time
	MarketDay   string
}

// resolvedInputs are the exact engine inputs for a request.
type resolvedInputs struct {
	yearIndex   int
	approxStart time.Time
	marketDay   string
	source      string // request, seed or default
}

// resolve fills the engine inputs: the request wins, then the stored seed,
// then the configured defaults.
func (s *Service) resolve(ctx context.Context, req YearRequest) (resolvedInputs, error) {
	in := resolvedInputs{
		yearIndex:   req.YearIndex,
		approxStart: time.Date(req.YearIndex, s.opts.SeedMonth, s.opts.SeedDay, 0, 0, 0, 0, time.UTC),
		marketDay:   s.opts.DefaultMarketDay,
		source:      "default",
	}

	if req.ApproxStart == nil || strings.TrimSpace(req.MarketDay) == "" {
		seed, err := s.store.GetSeed(ctx, req.YearIndex)
		switch {
		case err == nil:
			start, perr := calendar.ParseDateString(seed.ApproxStart)
			if perr != nil {
				return in, fmt.Errorf("parse stored seed for %d: %w", req.YearIndex, perr)
			}
			in.approxStart = start
			in.source = "seed"
			if seed.MarketAnchor != "" {
				in.marketDay = seed.MarketAnchor
			}
		case database.IsNotFound(err):
			// fall through to defaults
		default:
			return in, fmt.Errorf("get year seed: %w", err)
		}
	}

	if req.ApproxStart != nil {
		in.approxStart = *req.ApproxStart
		in.source = "request"
	}
	if md := strings.TrimSpace(req.MarketDay); md != "" {
		in.marketDay = md
	}

	return in, nil
}

// cacheKey identifies a build by every input that affects its output.
func (s *Service) cacheKey(in resolvedInputs) string {
	rule := s.builder.LeapRule()
	return fmt.Sprintf("%s|%s|%d|%s|leap=%d/%d|window=%d|labels=%s",
		cacheVersion,
		calendar.FormatDate(in.approxStart),
		in.yearIndex,
		strings.ToLower(in.marketDay),
		rule.AnchorYear, rule.Cycle,
		s.builder.NewMoonWindow(),
		s.labels,
	)
}

// Year returns the requested Igbo year, building it if it is not cached.
func (s *Service) Year(ctx context.Context, req YearRequest) (*calendar.IgboYear, error) {
	in, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(in)

	if s.opts.CacheEnabled {
		cached, err := s.store.GetCachedYear(ctx, key)
		switch {
		case err == nil:
			var year calendar.IgboYear
			if err := json.Unmarshal(cached.Payload, &year); err == nil {
				s.logger.Debug("year cache hit",
					slog.Int("year_index", in.yearIndex),
					slog.String("cache_key", key),
				)
				return &year, nil
			}
			s.logger.Warn("discarding unreadable cached year", slog.String("cache_key", key))
		case !database.IsNotFound(err):
			// A broken cache should not take the calendar down.
			s.logger.Warn("year cache lookup failed", slog.Any("error", err))
		}
	}

	start := time.Now()
	year := s.builder.BuildYear(in.approxStart, in.yearIndex, in.marketDay)

	s.logger.Info("year built",
		slog.Int("year_index", year.YearIndex),
		slog.String("year_start", year.YearStart),
		slog.Bool("is_leap", year.IsLeap),
		slog.String("seed_source", in.source),
		slog.Duration("duration", time.Since(start)),
	)

	if s.opts.CacheEnabled {
		payload, err := json.Marshal(year)
		if err != nil {
			return nil, fmt.Errorf("encode year: %w", err)
		}
		if err := s.store.PutCachedYear(ctx, key, year.YearIndex, payload); err != nil {
			s.logger.Warn("year cache store failed", slog.Any("error", err))
		}
	}

	return &year, nil
}

// Years builds count consecutive years starting at from, concurrently,
// and returns them in index order.
func (s *Service) Years(ctx context.Context, from, count int) ([]calendar.IgboYear, error) {
	if count < 1 || count > MaxYearsPerRequest {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidRequest, MaxYearsPerRequest, count)
	}

	years := make([]calendar.IgboYear, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)

	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			year, err := s.Year(gctx, YearRequest{YearIndex: from + i})
			if err != nil {
				return fmt.Errorf("year %d: %w", from+i, err)
			}
			years[i] = *year
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return years, nil
}

// Position is the Igbo calendar position of a Gregorian date.
type Position struct {
	GregorianDate string           `json:"gregorian_date"`
	YearIndex     int              `json:"year_index"`
	YearLabel     string           `json:"year_label"`
	IsLeap        bool             `json:"is_leap"`
	MonthIndex    int              `json:"month_index"`
	MonthName     string           `json:"month_name"`
	MonthGloss    string           `json:"month_gloss"`
	Day           calendar.IgboDay `json:"day"`
}

// Locate finds the Igbo month and day for a Gregorian date. The year whose
// index matches the date's Gregorian year is checked first, then the
// previous one, since a year seeded in February runs into the next January.
func (s *Service) Locate(ctx context.Context, date time.Time) (*Position, error) {
	target := calendar.FormatDate(date)

	for _, index := range []int{date.Year(), date.Year() - 1} {
		year, err := s.Year(ctx, YearRequest{YearIndex: index})
		if err != nil {
			return nil, err
		}
		if pos, ok := findDate(year, target); ok {
			return pos, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrDateNotCovered, target)
}

func findDate(year *calendar.IgboYear, target string) (*Position, bool) {
	// ISO dates compare lexically.
	if len(year.Months) == 0 || target < year.YearStart || target > year.Months[len(year.Months)-1].GregorianEnd {
		return nil, false
	}

	for _, month := range year.Months {
		if target < month.GregorianStart || target > month.GregorianEnd {
			continue
		}
		for _, day := range month.Days {
			if day.GregorianDate == target {
				return &Position{
					GregorianDate: target,
					YearIndex:     year.YearIndex,
					YearLabel:     year.Label,
					IsLeap:        year.IsLeap,
					MonthIndex:    month.Index,
					MonthName:     month.Name,
					MonthGloss:    month.Gloss,
					Day:           day,
				}, true
			}
		}
	}

	return nil, false
}

// LeapInfo summarises the leap status of a year.
type LeapInfo struct {
	YearIndex      int  `json:"year_index"`
	IsLeap         bool `json:"is_leap"`
	FinalMonthDays int  `json:"final_month_days"`
	TotalDays      int  `json:"total_days"`
}

// Leap reports the leap status of a year without building it.
func (s *Service) Leap(yearIndex int) LeapInfo {
	isLeap := s.builder.LeapRule().IsLeapYear(yearIndex)
	return LeapInfo{
		YearIndex:      yearIndex,
		IsLeap:         isLeap,
		FinalMonthDays: calendar.DaysInMonth(calendar.MonthsPerYear, isLeap),
		TotalDays:      calendar.DaysInYear(isLeap),
	}
}

// Moon returns the moon phase for a date.
func (s *Service) Moon(date time.Time) calendar.MoonPhaseInfo {
	return calendar.PhaseInfo(date)
}

// NewMoon aligns a date to the nearest new moon within window days.
func (s *Service) NewMoon(near time.Time, window int) time.Time {
	return calendar.AlignToNewMoon(calendar.NoonUTC(near), window)
}

// Builder exposes the engine configuration.
func (s *Service) Builder() *calendar.Builder {
	return s.builder
}

// =============================================================================
// Seeds
// =============================================================================

// SaveSeed validates and stores a year seed, then drops cached builds of
// that year.
func (s *Service) SaveSeed(ctx context.Context, seed *database.YearSeed) error {
	if _, err := calendar.ParseDateString(seed.ApproxStart); err != nil {
		return fmt.Errorf("%w: approx_start must be YYYY-MM-DD, got %q", ErrInvalidRequest, seed.ApproxStart)
	}

	seed.MarketAnchor = strings.TrimSpace(seed.MarketAnchor)
	if seed.MarketAnchor != "" {
		cycle := calendar.NewMarketCycle(s.builder.Registry().MarketDays, "")
		idx := cycle.IndexOf(seed.MarketAnchor)
		if idx < 0 {
			return fmt.Errorf("%w: unknown market day %q", ErrInvalidRequest, seed.MarketAnchor)
		}
		seed.MarketAnchor = s.builder.Registry().MarketDays[idx]
	}

	if err := s.store.UpsertSeed(ctx, seed); err != nil {
		return err
	}

	return s.purge(ctx, seed.YearIndex)
}

// ListSeeds returns every stored seed.
func (s *Service) ListSeeds(ctx context.Context) ([]database.YearSeed, error) {
	return s.store.ListSeeds(ctx)
}

// DeleteSeed removes a seed and its cached builds.
func (s *Service) DeleteSeed(ctx context.Context, yearIndex int) error {
	if err := s.store.DeleteSeed(ctx, yearIndex); err != nil {
		return err
	}
	return s.purge(ctx, yearIndex)
}

func (s *Service) purge(ctx context.Context, yearIndex int) error {
	purged, err := s.store.PurgeCachedYears(ctx, yearIndex)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.logger.Info("purged cached years",
			slog.Int("year_index", yearIndex),
			slog.Int64("rows", purged),
		)
	}
	return nil
}
