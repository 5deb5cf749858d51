package reconcile

import "sort"

// DateGroups buckets events by calendar date.
type DateGroups struct {
	byDate map[Date][]Event
	dates  []Date
}

// GroupByDate buckets events by the calendar date of their timestamp.
// Events keep their relative order within a date.
func GroupByDate(events []Event) DateGroups {
	g := DateGroups{byDate: make(map[Date][]Event)}
	for _, e := range events {
		d := e.Date()
		if _, ok := g.byDate[d]; !ok {
			g.dates = append(g.dates, d)
		}
		g.byDate[d] = append(g.byDate[d], e)
	}
	sort.Slice(g.dates, func(i, j int) bool { return g.dates[i] < g.dates[j] })
	return g
}

// Dates returns the dates present, ascending.
func (g DateGroups) Dates() []Date {
	out := make([]Date, len(g.dates))
	copy(out, g.dates)
	return out
}

// Events returns the events recorded on d.
func (g DateGroups) Events(d Date) []Event {
	return g.byDate[d]
}

// Len returns the total number of grouped events.
func (g DateGroups) Len() int {
	n := 0
	for _, evs := range g.byDate {
		n += len(evs)
	}
	return n
}

// unionDates merges the date keys of a and b, ascending and without
// duplicates.
func unionDates(a, b DateGroups) []Date {
	seen := make(map[Date]struct{}, len(a.dates)+len(b.dates))
	var out []Date
	for _, list := range [][]Date{a.dates, b.dates} {
		for _, d := range list {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
