package almanac

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/database"
)

// testService creates a service backed by an in-memory database.
func testService(t *testing.T, opts Options) (*Service, *database.DB) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(database.DefaultConfig(":memory:"), logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewService(db, calendar.NewBuilder(), opts, logger), db
}

func date(s string) time.Time {
	t, err := calendar.ParseDateString(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestYear_Defaults(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())

	year, err := svc.Year(context.Background(), YearRequest{YearIndex: 2025})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}

	// Default seed is February 1, which aligns to the January 29 new moon.
	if year.YearStart != "2025-01-29" {
		t.Errorf("YearStart = %s, want 2025-01-29", year.YearStart)
	}
	if year.Months[0].Days[0].MarketDay != "Afo" {
		t.Errorf("first market day = %q, want Afo", year.Months[0].Days[0].MarketDay)
	}
}

func TestYear_ResolutionOrder(t *testing.T) {
	svc, db := testService(t, DefaultOptions())
	ctx := context.Background()

	seed := &database.YearSeed{YearIndex: 2026, ApproxStart: "2026-02-17", MarketAnchor: "Eke"}
	if err := db.UpsertSeed(ctx, seed); err != nil {
		t.Fatalf("UpsertSeed() error = %v", err)
	}

	// Stored seed beats the default
	year, err := svc.Year(ctx, YearRequest{YearIndex: 2026})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	want := calendar.BuildYear(date("2026-02-17"), 2026, "Eke")
	if diff := cmp.Diff(want, *year); diff != "" {
		t.Errorf("seeded year mismatch (-want +got):\n%s", diff)
	}

	// Request beats the seed, field by field
	start := date("2026-02-01")
	year, err = svc.Year(ctx, YearRequest{YearIndex: 2026, ApproxStart: &start})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	want = calendar.BuildYear(start, 2026, "Eke")
	if diff := cmp.Diff(want, *year); diff != "" {
		t.Errorf("request start mismatch (-want +got):\n%s", diff)
	}

	year, err = svc.Year(ctx, YearRequest{YearIndex: 2026, MarketDay: "Orie"})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	want = calendar.BuildYear(date("2026-02-17"), 2026, "Orie")
	if diff := cmp.Diff(want, *year); diff != "" {
		t.Errorf("request market day mismatch (-want +got):\n%s", diff)
	}
}

func TestYear_UsesCache(t *testing.T) {
	svc, db := testService(t, DefaultOptions())
	ctx := context.Background()

	first, err := svc.Year(ctx, YearRequest{YearIndex: 2025})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}

	count, err := db.CountCachedYears(ctx)
	if err != nil {
		t.Fatalf("CountCachedYears() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("CountCachedYears() = %d, want 1", count)
	}

	second, err := svc.Year(ctx, YearRequest{YearIndex: 2025})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached year mismatch (-built +cached):\n%s", diff)
	}

	count, _ = db.CountCachedYears(ctx)
	if count != 1 {
		t.Errorf("CountCachedYears() after hit = %d, want 1", count)
	}
}

func TestYear_CacheKeyedByLabels(t *testing.T) {
	svc, db := testService(t, DefaultOptions())
	ctx := context.Background()

	if _, err := svc.Year(ctx, YearRequest{YearIndex: 2025}); err != nil {
		t.Fatalf("Year() error = %v", err)
	}

	reg := calendar.DefaultRegistry()
	reg.Months[0].Name = "First Moon"
	relabelled := NewService(db, calendar.NewBuilder(calendar.WithRegistry(reg)), DefaultOptions(), nil)

	year, err := relabelled.Year(ctx, YearRequest{YearIndex: 2025})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	if year.Months[0].Name != "First Moon" {
		t.Errorf("month 1 name = %q, want First Moon (stale cache served)", year.Months[0].Name)
	}

	count, _ := db.CountCachedYears(ctx)
	if count != 2 {
		t.Errorf("CountCachedYears() = %d, want 2", count)
	}
}

func TestYear_CacheDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.CacheEnabled = false
	svc, db := testService(t, opts)
	ctx := context.Background()

	if _, err := svc.Year(ctx, YearRequest{YearIndex: 2025}); err != nil {
		t.Fatalf("Year() error = %v", err)
	}

	count, err := db.CountCachedYears(ctx)
	if err != nil {
		t.Fatalf("CountCachedYears() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountCachedYears() = %d, want 0 with caching off", count)
	}
}

func TestSaveSeed_PurgesCache(t *testing.T) {
	svc, db := testService(t, DefaultOptions())
	ctx := context.Background()

	if _, err := svc.Year(ctx, YearRequest{YearIndex: 2025}); err != nil {
		t.Fatalf("Year() error = %v", err)
	}

	err := svc.SaveSeed(ctx, &database.YearSeed{YearIndex: 2025, ApproxStart: "2025-01-30", MarketAnchor: "nkwo"})
	if err != nil {
		t.Fatalf("SaveSeed() error = %v", err)
	}

	count, _ := db.CountCachedYears(ctx)
	if count != 0 {
		t.Errorf("CountCachedYears() after SaveSeed = %d, want 0", count)
	}

	seed, err := db.GetSeed(ctx, 2025)
	if err != nil {
		t.Fatalf("GetSeed() error = %v", err)
	}
	if seed.MarketAnchor != "Nkwo" {
		t.Errorf("MarketAnchor = %q, want canonical %q", seed.MarketAnchor, "Nkwo")
	}

	year, err := svc.Year(ctx, YearRequest{YearIndex: 2025})
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	if year.Months[0].Days[0].MarketDay != "Nkwo" {
		t.Errorf("first market day = %q, want Nkwo from the seed", year.Months[0].Days[0].MarketDay)
	}
}

func TestSaveSeed_Invalid(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())
	ctx := context.Background()

	tests := []struct {
		name string
		seed database.YearSeed
	}{
		{"bad date", database.YearSeed{YearIndex: 2025, ApproxStart: "01/30/2025"}},
		{"unknown market day", database.YearSeed{YearIndex: 2025, ApproxStart: "2025-01-30", MarketAnchor: "Sunday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SaveSeed(ctx, &tt.seed)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("SaveSeed() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestDeleteSeed(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())
	ctx := context.Background()

	if err := svc.SaveSeed(ctx, &database.YearSeed{YearIndex: 2025, ApproxStart: "2025-01-30"}); err != nil {
		t.Fatalf("SaveSeed() error = %v", err)
	}

	seeds, err := svc.ListSeeds(ctx)
	if err != nil || len(seeds) != 1 {
		t.Fatalf("ListSeeds() = %v, %v; want one seed", seeds, err)
	}

	if err := svc.DeleteSeed(ctx, 2025); err != nil {
		t.Fatalf("DeleteSeed() error = %v", err)
	}
	if err := svc.DeleteSeed(ctx, 2025); !database.IsNotFound(err) {
		t.Errorf("DeleteSeed() second call error = %v, want not found", err)
	}
}

func TestYears(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)

	svc, _ := testService(t, DefaultOptions())

	years, err := svc.Years(context.Background(), 2024, 4)
	if err != nil {
		t.Fatalf("Years() error = %v", err)
	}
	if len(years) != 4 {
		t.Fatalf("len(Years()) = %d, want 4", len(years))
	}

	for i, y := range years {
		if y.YearIndex != 2024+i {
			t.Errorf("years[%d].YearIndex = %d, want %d", i, y.YearIndex, 2024+i)
		}
		want := calendar.BuildYear(time.Date(2024+i, time.February, 1, 0, 0, 0, 0, time.UTC), 2024+i, "Afo")
		if diff := cmp.Diff(want, y); diff != "" {
			t.Errorf("years[%d] mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestYears_InvalidCount(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())

	for _, count := range []int{0, -1, MaxYearsPerRequest + 1} {
		if _, err := svc.Years(context.Background(), 2025, count); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Years(count=%d) error = %v, want ErrInvalidRequest", count, err)
		}
	}
}

func TestLocate(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())
	ctx := context.Background()

	tests := []struct {
		date      string
		wantYear  int
		wantMonth int
		wantDay   int
		wantMkt   string
	}{
		{"2025-01-29", 2025, 1, 1, "Afo"},
		{"2025-01-30", 2025, 1, 2, "Nkwo"},
		{"2025-03-14", 2025, 2, 17, "Afo"},
		{"2026-01-20", 2025, 13, 21, "Afo"}, // found via the previous index
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			pos, err := svc.Locate(ctx, date(tt.date))
			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if pos.YearIndex != tt.wantYear || pos.MonthIndex != tt.wantMonth || pos.Day.IgboDay != tt.wantDay {
				t.Errorf("Locate() = year %d month %d day %d, want %d/%d/%d",
					pos.YearIndex, pos.MonthIndex, pos.Day.IgboDay, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if pos.Day.MarketDay != tt.wantMkt {
				t.Errorf("Locate() market day = %q, want %q", pos.Day.MarketDay, tt.wantMkt)
			}
			if pos.GregorianDate != tt.date {
				t.Errorf("Locate() GregorianDate = %s, want %s", pos.GregorianDate, tt.date)
			}
		})
	}
}

func TestLocate_NotCovered(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())

	// Year 2024 (seeded Feb 1) ends 2025-01-25 and year 2025 starts
	// 2025-01-29, leaving 2025-01-26..28 uncovered.
	_, err := svc.Locate(context.Background(), date("2025-01-26"))
	if !errors.Is(err, ErrDateNotCovered) {
		t.Errorf("Locate() error = %v, want ErrDateNotCovered", err)
	}
}

func TestLeap(t *testing.T) {
	svc, _ := testService(t, DefaultOptions())

	got := svc.Leap(2025)
	want := LeapInfo{YearIndex: 2025, IsLeap: true, FinalMonthDays: 30, TotalDays: 366}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Leap(2025) mismatch (-want +got):\n%s", diff)
	}

	got = svc.Leap(2026)
	want = LeapInfo{YearIndex: 2026, IsLeap: false, FinalMonthDays: 29, TotalDays: 365}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Leap(2026) mismatch (-want +got):\n%s", diff)
	}
}
