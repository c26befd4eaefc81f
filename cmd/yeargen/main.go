// Command yeargen prints Igbo calendar years without a server or database.
//
// Usage:
//
//	go run ./cmd/yeargen year --year 2025
//	go run ./cmd/yeargen year --year 2026 --start 2026-02-17 --market Orie --json
//	go run ./cmd/yeargen moon 2025-03-15
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "yeargen",
		Short:        "Generate Igbo 13-month calendar years",
		SilenceUsage: true,
	}

	cmd.AddCommand(yearCmd(), moonCmd())
	return cmd
}

func yearCmd() *cobra.Command {
	var (
		year       int
		count      int
		start      string
		market     string
		labels     string
		window     int
		anchorYear int
		cycle      int
		asJSON     bool
		showDays   bool
	)

	c := &cobra.Command{
		Use:   "year",
		Short: "Build one or more Igbo years",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if window < 0 || window > config.MaxNewMoonWindow {
				return fmt.Errorf("--window must be between 0 and %d", config.MaxNewMoonWindow)
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			registry := calendar.DefaultRegistry()
			if labels != "" {
				r, err := calendar.LoadRegistry(labels)
				if err != nil {
					return err
				}
				registry = r
			}

			builder := calendar.NewBuilder(
				calendar.WithRegistry(registry),
				calendar.WithLeapRule(calendar.LeapRule{AnchorYear: anchorYear, Cycle: cycle}),
				calendar.WithNewMoonWindow(window),
			)

			var approx *time.Time
			if start != "" {
				d, err := calendar.ParseDateString(start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				approx = &d
			}

			years := make([]calendar.IgboYear, 0, count)
			for i := 0; i < count; i++ {
				index := year + i
				seed := time.Date(index, time.February, 1, 0, 0, 0, 0, time.UTC)
				// --start only applies to the first year.
				if approx != nil && i == 0 {
					seed = *approx
				}
				years = append(years, builder.BuildYear(seed, index, market))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if count == 1 {
					return enc.Encode(years[0])
				}
				return enc.Encode(years)
			}

			for _, y := range years {
				printYear(out, y, showDays)
			}
			return nil
		},
	}

	c.Flags().IntVarP(&year, "year", "y", time.Now().Year(), "Igbo year index")
	c.Flags().IntVarP(&count, "count", "n", 1, "Number of consecutive years")
	c.Flags().StringVar(&start, "start", "", "Approximate start date YYYY-MM-DD (default Feb 1 of the year)")
	c.Flags().StringVarP(&market, "market", "m", calendar.DefaultMarketAnchor, "Market day of the first day")
	c.Flags().StringVar(&labels, "labels", "", "YAML label registry")
	c.Flags().IntVar(&window, "window", calendar.DefaultNewMoonWindow, "New moon search window in days")
	c.Flags().IntVar(&anchorYear, "leap-anchor", calendar.DefaultLeapAnchorYear, "Leap cycle anchor year")
	c.Flags().IntVar(&cycle, "leap-cycle", calendar.DefaultLeapCycle, "Leap cycle length in years")
	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	c.Flags().BoolVar(&showDays, "days", false, "Print every day")
	return c
}

func moonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moon DATE",
		Short: "Show the moon phase for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := calendar.ParseDateString(args[0])
			if err != nil {
				return err
			}

			info := calendar.PhaseInfo(date)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s  fraction=%.4f  illumination=%d%%\n",
				calendar.FormatDate(date), info.Symbol, info.Stage, info.PhaseFraction, info.IlluminationPercent)
			return nil
		},
	}
}

func printYear(out io.Writer, y calendar.IgboYear, showDays bool) {
	leap := "common"
	if y.IsLeap {
		leap = "leap"
	}
	fmt.Fprintf(out, "=== %s (%s, %d days) ===\n", y.Label, leap, y.TotalDays)
	fmt.Fprintf(out, "Starts: %s\n\n", y.YearStart)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMonth\tGloss\tDays\tStart\tEnd\tFirst market")
	for _, m := range y.Months {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			m.Index, m.Name, m.Gloss, m.DayCount, m.GregorianStart, m.GregorianEnd, m.Days[0].MarketDay)
	}
	tw.Flush()
	fmt.Fprintln(out)

	if !showDays {
		return
	}

	for _, m := range y.Months {
		fmt.Fprintf(out, "%s\n", m.Name)
		for _, d := range m.Days {
			fmt.Fprintf(out, "  %2d  %s  %-9s  %-4s  %s %s\n",
				d.IgboDay, d.GregorianDate, d.Weekday, d.MarketDay, d.MoonSymbol, d.MoonStage)
		}
	}
	fmt.Fprintln(out)
}
