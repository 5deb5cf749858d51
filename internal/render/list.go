package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// dayOf splits a snapshot timestamp into its day and clock parts.
func dayOf(ts string) (day, clock string) {
	day, clock, _ = strings.Cut(ts, " ")
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return day, clock
}

// FeedList prints a feed snapshot grouped by day.
func FeedList(w io.Writer, f model.FeedFile) {
	if len(f.Events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}
	var currentDay string
	for _, e := range f.Events {
		day, clock := dayOf(e.Date)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		desc := ""
		if d := e.Description(); d != "" {
			desc = "  " + d
		}
		fmt.Fprintf(w, "%s  %-12s %s%s\n", clock, e.Action, e.Project, desc)
	}
}

// LedgerList prints a ledger snapshot grouped by day, followed by its total.
func LedgerList(w io.Writer, f model.LedgerFile) {
	if len(f.Entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	var currentDay string
	for _, e := range f.Entries {
		day, clock := dayOf(e.Date)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		fmt.Fprintf(w, "%s  %s  %s (%s)\n", clock, e.Project, e.Description, timecalc.FormatDuration(e.DurationSeconds))
	}
	fmt.Fprintf(w, "Total: %s\n", f.TotalDuration.Formatted)
}
