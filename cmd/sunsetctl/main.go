// Command sunsetctl answers sunset and milestone questions from the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/spencer-p/sunsetdash/pkg/config"
	"github.com/spencer-p/sunsetdash/pkg/locations"
	"github.com/spencer-p/sunsetdash/pkg/milestone"
	"github.com/spencer-p/sunsetdash/pkg/places"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

type options struct {
	lat, lon float64
	place    string
	zone     string
	date     string
	oracle   string
	horizon  int
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sunsetctl",
		Short:         "Count the days until sunset reaches a clock time",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.Float64Var(&opts.lat, "lat", sunset.SantaCruz.Lat, "latitude in degrees")
	flags.Float64Var(&opts.lon, "lon", sunset.SantaCruz.Long, "longitude in degrees")
	flags.StringVar(&opts.place, "place", "", "search for a named place instead of --lat/--lon")
	flags.StringVar(&opts.zone, "zone", config.ApproxZone, `IANA time zone; "approx" derives one from longitude, "local" is the host zone`)
	flags.StringVar(&opts.date, "date", "", "day to start from, 2006-01-02; defaults to now")
	flags.StringVar(&opts.oracle, "oracle", "keep94", "sun oracle: keep94 or osman")
	flags.IntVar(&opts.horizon, "horizon", milestone.DefaultHorizon, "days a search scans before giving up")

	root.AddCommand(
		sunsetCmd(opts),
		progressionCmd(opts),
		nextCmd(opts),
		countdownCmd(opts),
		calendarCmd(opts),
		placesCmd(),
	)
	return root
}

// setup resolves the flags into an engine, a location and a start time.
func (o *options) setup() (*milestone.Engine, sunset.Location, time.Time, error) {
	cfg := config.Config{
		TimeZone:    o.zone,
		Oracle:      o.oracle,
		HorizonDays: o.horizon,
		LadderStart: "16:00",
		LadderEnd:   "21:00",
	}
	engine, err := cfg.Engine(nil)
	if err != nil {
		return nil, sunset.Location{}, time.Time{}, err
	}

	p := locations.NewProvider(nil, places.Default())
	if o.place != "" {
		_, err = p.SetFromSearch(o.place)
	} else {
		_, err = p.SetManual(o.lat, o.lon, "")
	}
	if err != nil {
		return nil, sunset.Location{}, time.Time{}, err
	}
	loc, err := p.Current()
	if err != nil {
		return nil, sunset.Location{}, time.Time{}, err
	}

	start := time.Now()
	if o.date != "" {
		start, err = time.ParseInLocation("2006-01-02", o.date, engine.Querier.ZoneFor(loc))
		if err != nil {
			return nil, sunset.Location{}, time.Time{}, fmt.Errorf("bad --date: %w", err)
		}
	}
	return engine, loc, start, nil
}

func sunsetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sunset",
		Short: "Print the day's sunrise and sunset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, loc, start, err := opts.setup()
			if err != nil {
				return err
			}
			info, err := e.Querier.Query(loc, start)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			fmt.Fprintf(cmd.OutOrStdout(), "day length %s\n", info.DayLength().Round(time.Minute))
			for _, m := range e.Ladder.Markers(info) {
				fmt.Fprintln(cmd.OutOrStdout(), m.Label)
			}
			return nil
		},
	}
}

func progressionCmd(opts *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "progression",
		Short: "Print sunsets for consecutive days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, loc, start, err := opts.setup()
			if err != nil {
				return err
			}
			for r := range e.Querier.Progression(loc, start, days) {
				if r.OK() {
					fmt.Fprintln(cmd.OutOrStdout(), r.Info.String())
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", r.Date.Format("Mon 02 Jan 06"), r.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 14, "number of days")
	return cmd
}

func nextCmd(opts *options) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the next milestone and the ones after it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, loc, start, err := opts.setup()
			if err != nil {
				return err
			}
			next, err := e.NextMilestone(loc, start)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next.Entry.String())
			upcoming, err := e.UpcomingAfter(loc, next, start, count)
			if err != nil {
				return err
			}
			for _, entry := range upcoming {
				fmt.Fprintln(cmd.OutOrStdout(), entry.String())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 4, "milestones to list after the next one")
	return cmd
}

func countdownCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "countdown",
		Short: "Count down to the next milestone's sunset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, loc, start, err := opts.setup()
			if err != nil {
				return err
			}
			b, ok := e.Countdown(loc, start)
			if !ok {
				return errors.New("no upcoming milestone")
			}
			zone := e.Querier.ZoneFor(loc)
			fmt.Fprintf(cmd.OutOrStdout(), "%s until sunset at %s %s\n",
				b.String(),
				timetricks.DayLabel(b.Target, start, zone),
				b.Target.In(zone).Format("3:04 PM"))
			return nil
		},
	}
}

func calendarCmd(opts *options) *cobra.Command {
	var hours string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print when sunset next reaches each of --hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, loc, start, err := opts.setup()
			if err != nil {
				return err
			}
			var targets []float64
			for _, field := range strings.Split(hours, ",") {
				h, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
				if err != nil {
					return fmt.Errorf("bad --hours entry %q: %w", field, err)
				}
				if math.IsNaN(h) || math.IsInf(h, 0) {
					return fmt.Errorf("bad --hours entry %q: not a number of hours", field)
				}
				targets = append(targets, h)
			}
			entries, err := e.Calendar(loc, start, targets)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&hours, "hours", "17,17.5,18,18.5,19,19.5,20", "comma separated fractional hours")
	return cmd
}

func placesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "places QUERY",
		Short: "Search the place directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found := places.Default().Search(args[0], limit)
			if len(found) == 0 {
				return fmt.Errorf("%w %q", locations.ErrNoMatch, args[0])
			}
			for _, loc := range found {
				fmt.Fprintln(cmd.OutOrStdout(), loc.String())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")
	return cmd
}
