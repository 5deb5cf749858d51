package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// periodFlags selects the date range a fetch covers.
type periodFlags struct {
	currentMonth  bool
	previousMonth bool
	months        int
	days          int
	from          string
	to            string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.currentMonth, "current-month", false, "From the first of this month until now (default)")
	cmd.Flags().BoolVar(&p.previousMonth, "previous-month", false, "The whole previous month")
	cmd.Flags().IntVar(&p.months, "months", 0, "Look back this many months from now")
	cmd.Flags().IntVar(&p.days, "days", 0, "Look back this many days from now (added to --months)")
	cmd.Flags().StringVar(&p.from, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	cmd.Flags().StringVar(&p.to, "to", "", "End date (YYYY-MM-DD); defaults to today")
}

// resolve returns the selected range. Only one way of selecting it may be
// used at a time.
func (p periodFlags) resolve(now time.Time) (time.Time, time.Time, error) {
	selected := 0
	for _, set := range []bool{p.currentMonth, p.previousMonth, p.months > 0 || p.days > 0, p.from != "" || p.to != ""} {
		if set {
			selected++
		}
	}
	if selected > 1 {
		return time.Time{}, time.Time{}, errors.New("use only one of --current-month, --previous-month, --months/--days and --from/--to")
	}
	if p.months < 0 || p.days < 0 {
		return time.Time{}, time.Time{}, errors.New("--months and --days must not be negative")
	}

	switch {
	case p.to != "" && p.from == "":
		return time.Time{}, time.Time{}, errors.New("--from is required when --to is specified")
	case p.from != "":
		return timecalc.DateRange(p.from, p.to, now)
	case p.previousMonth:
		from, to := timecalc.PreviousMonth(now)
		return from, to, nil
	case p.months > 0 || p.days > 0:
		from, to := timecalc.Lookback(now, p.months, p.days)
		return from, to, nil
	default:
		from, to := timecalc.CurrentMonth(now)
		return from, to, nil
	}
}
