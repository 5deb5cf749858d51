package render

import (
	"html/template"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

var sideBySideTemplate = template.Must(template.New("side-by-side").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Toggl Records Comparison</title>
<style>{{.CSS}}
.comparison-container { display: flex; gap: 20px; }
.column { flex: 1; min-width: 0; }
.column-header { font-size: 1.2em; font-weight: bold; padding: 10px; background: #f2f2f2; border-radius: 5px; margin-bottom: 10px; }
.task-header { font-weight: bold; margin: 10px 0 5px; }
</style>
</head>
<body>
<h1>Toggl Records Comparison</h1>
<div class="summary">
<h2>Summary</h2>
<div class="summary-item"><strong>Original Period:</strong> {{.Original.Start}} to {{.Original.End}}</div>
<div class="summary-item"><strong>Updated Period:</strong> {{.Updated.Start}} to {{.Updated.End}}</div>
<div class="summary-item"><strong>Total Tasks:</strong> {{.TotalTasks}}</div>
</div>
<div class="legend">
<div class="legend-item"><span class="legend-color legend-green"></span> New entries (added in updated data)</div>
<div class="legend-item"><span class="legend-color legend-yellow"></span> Modified entries (changed from original data)</div>
</div>
<div class="comparison-container">
{{range .Columns}}<div class="column">
<div class="column-header">{{.Title}}</div>
{{range .Days}}<div class="date-container">
<div class="date-header">{{.Date}} - {{.Weekday}}</div>
{{range .Tasks}}<div class="task-header">Task: {{.Title}}</div>
<table>
<thead><tr><th>Time</th><th>Project</th><th>Tags</th><th>Duration</th></tr></thead>
<tbody>
{{range .Rows}}<tr class="{{.Class}}"><td>{{.Time}}</td><td>{{.Project}}</td><td>{{.Tags}}</td><td>{{.Duration}}</td></tr>
{{end}}</tbody>
</table>
{{end}}</div>
{{end}}</div>
{{end}}</div>
</body>
</html>
`))

type sideView struct {
	CSS        template.CSS
	Original   reconcile.Period
	Updated    reconcile.Period
	TotalTasks int
	Columns    []sideColumn
}

type sideColumn struct {
	Title string
	Days  []sideDay
}

type sideDay struct {
	Date    string
	Weekday string
	Tasks   []sideTask
}

type sideTask struct {
	Title string
	Rows  []sideRow
}

type sideRow struct {
	Time     string
	Project  string
	Tags     string
	Duration string
	Class    string
}

// byDayTask indexes entries by day, then by task id or, for entries without
// one, by description.
type byDayTask map[string]map[string][]model.LedgerEntry

func indexEntries(entries []model.LedgerEntry) byDayTask {
	idx := make(byDayTask)
	for _, e := range entries {
		day, _ := dayOf(e.Date)
		key := taskKey(e.Description)
		if idx[day] == nil {
			idx[day] = make(map[string][]model.LedgerEntry)
		}
		idx[day][key] = append(idx[day][key], e)
	}
	return idx
}

func taskKey(description string) string {
	if id, ok := reconcile.ExtractTaskID(description).Get(); ok {
		return id
	}
	if description == "" {
		return "No description"
	}
	return description
}

// SideBySide writes an HTML page comparing two ledger snapshots day by day.
// Rows of the updated snapshot are marked as added when the original has no
// entry at the same time for the task, and as modified when it differs.
func SideBySide(w io.Writer, original, updated model.LedgerFile) error {
	return sideBySideTemplate.Execute(w, buildSideView(original, updated))
}

func buildSideView(original, updated model.LedgerFile) sideView {
	orig := indexEntries(original.Entries)
	upd := indexEntries(updated.Entries)

	days := make(map[string]bool)
	tasks := make(map[string]bool)
	for _, idx := range []byDayTask{orig, upd} {
		for day, byTask := range idx {
			days[day] = true
			for k := range byTask {
				tasks[k] = true
			}
		}
	}
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	left := sideColumn{Title: "Original Toggl Records"}
	right := sideColumn{Title: "Updated Toggl Records"}
	for _, date := range dates {
		keys := make([]string, 0, len(orig[date])+len(upd[date]))
		for k := range orig[date] {
			keys = append(keys, k)
		}
		for k := range upd[date] {
			if _, ok := orig[date][k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		ld := sideDay{Date: date, Weekday: weekday(date)}
		rd := ld
		for _, k := range keys {
			if entries := orig[date][k]; len(entries) > 0 {
				ld.Tasks = append(ld.Tasks, sideTaskOf(entries, nil, false))
			}
			if entries := upd[date][k]; len(entries) > 0 {
				rd.Tasks = append(rd.Tasks, sideTaskOf(entries, orig[date][k], true))
			}
		}
		left.Days = append(left.Days, ld)
		right.Days = append(right.Days, rd)
	}

	return sideView{
		CSS:        template.CSS(baseCSS),
		Original:   original.Period,
		Updated:    updated.Period,
		TotalTasks: len(tasks),
		Columns:    []sideColumn{left, right},
	}
}

// sideTaskOf builds the rows of one task. With mark set every row is
// classified against baseline.
func sideTaskOf(entries, baseline []model.LedgerEntry, mark bool) sideTask {
	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	t := sideTask{Title: sorted[0].Description}
	for _, e := range sorted {
		_, clock := dayOf(e.Date)
		project := e.Project
		if project == "" {
			project = "No project"
		}
		row := sideRow{
			Time:     clock,
			Project:  project,
			Tags:     joinTags(e.Tags),
			Duration: e.DurationFormatted,
		}
		if mark {
			row.Class = classify(e, baseline)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func classify(e model.LedgerEntry, baseline []model.LedgerEntry) string {
	found := false
	for _, b := range baseline {
		if b.Date != e.Date {
			continue
		}
		found = true
		if b.Description != e.Description || b.Project != e.Project ||
			b.DurationSeconds != e.DurationSeconds || !slices.Equal(b.Tags, e.Tags) {
			return "modified"
		}
	}
	if !found {
		return "added"
	}
	return ""
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "No tags"
	}
	return strings.Join(tags, ", ")
}
