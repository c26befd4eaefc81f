package calendar

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

var feb2025 = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

func marketIndex(t *testing.T, label string) int {
	t.Helper()
	for i, l := range DefaultMarketDays {
		if l == label {
			return i
		}
	}
	t.Fatalf("unknown market day %q", label)
	return -1
}

func allDays(y IgboYear) []IgboDay {
	var days []IgboDay
	for _, m := range y.Months {
		days = append(days, m.Days...)
	}
	return days
}

func TestBuildYear_Structure(t *testing.T) {
	for index := 2020; index <= 2032; index++ {
		approx := time.Date(index, time.February, 1, 0, 0, 0, 0, time.UTC)
		year := BuildYear(approx, index, DefaultMarketAnchor)

		if len(year.Months) != MonthsPerYear {
			t.Fatalf("year %d: len(Months) = %d, want %d", index, len(year.Months), MonthsPerYear)
		}

		total := 0
		for i, m := range year.Months {
			if m.Index != i+1 {
				t.Errorf("year %d: month %d has Index %d", index, i+1, m.Index)
			}
			if len(m.Days) != m.DayCount {
				t.Errorf("year %d month %d: len(Days) = %d, DayCount = %d", index, m.Index, len(m.Days), m.DayCount)
			}
			if m.GregorianStart != m.Days[0].GregorianDate || m.GregorianEnd != m.Days[len(m.Days)-1].GregorianDate {
				t.Errorf("year %d month %d: span %s..%s does not match days", index, m.Index, m.GregorianStart, m.GregorianEnd)
			}
			for d, day := range m.Days {
				if day.IgboDay != d+1 {
					t.Errorf("year %d month %d: day %d has IgboDay %d", index, m.Index, d+1, day.IgboDay)
				}
			}
			total += m.DayCount
		}

		want := 12*DaysPerMonth + FinalMonthDays
		if DefaultLeapRule().IsLeapYear(index) {
			want++
		}
		if total != want || year.TotalDays != want {
			t.Errorf("year %d: total days = %d (TotalDays %d), want %d", index, total, year.TotalDays, want)
		}
	}
}

func TestBuildYear_ConsecutiveDates(t *testing.T) {
	year := BuildYear(feb2025, 2025, "Afo")
	days := allDays(year)

	if days[0].GregorianDate != year.YearStart {
		t.Errorf("first day = %s, want YearStart %s", days[0].GregorianDate, year.YearStart)
	}

	for i := 1; i < len(days); i++ {
		prev, _ := ParseDateString(days[i-1].GregorianDate)
		cur, _ := ParseDateString(days[i].GregorianDate)
		if daysBetween(prev, cur) != 1 {
			t.Fatalf("day %d: %s follows %s", i, days[i].GregorianDate, days[i-1].GregorianDate)
		}
		if days[i].Weekday != DayName(cur) {
			t.Errorf("day %s: Weekday = %q, want %q", days[i].GregorianDate, days[i].Weekday, DayName(cur))
		}
	}
}

func TestBuildYear_MarketDayNeverSkips(t *testing.T) {
	for _, anchor := range []string{"Eke", "Orie", "Afo", "Nkwo"} {
		year := BuildYear(feb2025, 2025, anchor)
		days := allDays(year)

		if days[0].MarketDay != anchor {
			t.Errorf("anchor %s: first market day = %q", anchor, days[0].MarketDay)
		}
		for i := 1; i < len(days); i++ {
			prev := marketIndex(t, days[i-1].MarketDay)
			cur := marketIndex(t, days[i].MarketDay)
			if cur != (prev+1)%MarketDaysPerWeek {
				t.Fatalf("anchor %s: day %d market %q follows %q", anchor, i, days[i].MarketDay, days[i-1].MarketDay)
			}
		}
	}
}

func TestBuildYear_Year2025(t *testing.T) {
	year := BuildYear(feb2025, 2025, "Afo")

	if year.YearStart != "2025-01-29" {
		t.Errorf("YearStart = %s, want 2025-01-29", year.YearStart)
	}
	if !year.IsLeap {
		t.Error("IsLeap = false, want true for the anchor year")
	}
	if year.Label != "Igbo Year 2025/2025" {
		t.Errorf("Label = %q, want %q", year.Label, "Igbo Year 2025/2025")
	}
	if got := year.Months[0].Days[0].MarketDay; got != "Afo" {
		t.Errorf("first market day = %q, want Afo", got)
	}
	if got := year.Months[0].Days[1].MarketDay; got != "Nkwo" {
		t.Errorf("second market day = %q, want Nkwo", got)
	}
	if got := year.Months[12].DayCount; got != 30 {
		t.Errorf("month 13 DayCount = %d, want 30", got)
	}
	if got := year.Months[0].Name; got != "Ọnwa Mbụ" {
		t.Errorf("month 1 Name = %q, want %q", got, "Ọnwa Mbụ")
	}
	if got := year.Months[12].GregorianEnd; got != "2026-01-29" {
		t.Errorf("last day = %s, want 2026-01-29", got)
	}
	if year.TotalDays != 366 {
		t.Errorf("TotalDays = %d, want 366", year.TotalDays)
	}

	first := year.Months[0].Days[0]
	if first.MoonStage != "New Moon" || first.IlluminationPercent != 0 {
		t.Errorf("first day moon = %s %d%%, want New Moon 0%%", first.MoonStage, first.IlluminationPercent)
	}
}

// The extra day follows the 3-year Igbo cycle and always lands on month 13.
// Gregorian leap years must not change any month length.
func TestBuildYear_GregorianLeapYearHasNoEffect(t *testing.T) {
	approx := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	year := BuildYear(approx, 2024, "Afo")

	if year.IsLeap {
		t.Error("IsLeap = true for 2024, a Gregorian leap year outside the Igbo cycle")
	}
	if year.TotalDays != 365 {
		t.Errorf("TotalDays = %d, want 365", year.TotalDays)
	}
	if year.Months[0].DayCount != DaysPerMonth {
		t.Errorf("month 1 DayCount = %d, want %d", year.Months[0].DayCount, DaysPerMonth)
	}
	if year.Months[12].DayCount != FinalMonthDays {
		t.Errorf("month 13 DayCount = %d, want %d", year.Months[12].DayCount, FinalMonthDays)
	}

	// 2025 is not a Gregorian leap year but is an Igbo correction year.
	year = BuildYear(feb2025, 2025, "Afo")
	if year.Months[0].DayCount != DaysPerMonth || year.Months[12].DayCount != FinalMonthDays+1 {
		t.Errorf("2025: month 1 = %d, month 13 = %d; want 28 and 30",
			year.Months[0].DayCount, year.Months[12].DayCount)
	}
}

func TestBuildYear_UnknownAnchorFallsBack(t *testing.T) {
	year := BuildYear(feb2025, 2025, "Saturday")

	if got := year.Months[0].Days[0].MarketDay; got != "Eke" {
		t.Errorf("first market day = %q, want Eke", got)
	}
}

func TestBuildYear_Deterministic(t *testing.T) {
	a := BuildYear(feb2025, 2025, "Afo")
	b := BuildYear(feb2025, 2025, "Afo")

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("BuildYear mismatch (-first +second):\n%s", diff)
	}

	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(ja) != string(jb) {
		t.Error("BuildYear JSON output differs between identical calls")
	}
}

func TestBuildYear_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	want := BuildYear(feb2025, 2025, "Afo")
	builder := NewBuilder()

	var wg sync.WaitGroup
	results := make([]IgboYear, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = builder.BuildYear(feb2025, 2025, "Afo")
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("goroutine %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestBuilder_Options(t *testing.T) {
	reg, err := ParseRegistry([]byte(testRegistryYAML))
	if err != nil {
		t.Fatalf("ParseRegistry() error = %v", err)
	}

	b := NewBuilder(
		WithRegistry(reg),
		WithLeapRule(LeapRule{AnchorYear: 2026, Cycle: 3}),
		WithNewMoonWindow(0),
	)

	year := b.BuildYear(feb2025, 2025, "Orie")

	if year.YearStart != "2025-02-01" {
		t.Errorf("YearStart = %s, want 2025-02-01 with a zero window", year.YearStart)
	}
	if year.IsLeap {
		t.Error("IsLeap = true, want false with anchor 2026")
	}
	if year.Months[0].Name != "M1" {
		t.Errorf("month 1 Name = %q, want M1", year.Months[0].Name)
	}
	if year.Months[0].Days[0].MarketDay != "Orie" {
		t.Errorf("first market day = %q, want Orie", year.Months[0].Days[0].MarketDay)
	}
}

func TestIgboYear_Day(t *testing.T) {
	year := BuildYear(feb2025, 2025, "Afo")

	day, ok := year.Day(13, 30)
	if !ok {
		t.Fatal("Day(13, 30) not found in a leap year")
	}
	if day.GregorianDate != "2026-01-29" {
		t.Errorf("Day(13, 30) = %s, want 2026-01-29", day.GregorianDate)
	}

	if _, ok := year.Day(14, 1); ok {
		t.Error("Day(14, 1) should not exist")
	}
	if _, ok := year.Day(1, 29); ok {
		t.Error("Day(1, 29) should not exist")
	}
}

func TestYearLabel(t *testing.T) {
	tests := []struct {
		start time.Time
		want  string
	}{
		{time.Date(2025, time.January, 29, 12, 0, 0, 0, time.UTC), "Igbo Year 2025/2025"},
		{time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC), "Igbo Year 2025/2026"},
	}

	for _, tt := range tests {
		if got := YearLabel(tt.start); got != tt.want {
			t.Errorf("YearLabel(%s) = %q, want %q", FormatDate(tt.start), got, tt.want)
		}
	}
}
