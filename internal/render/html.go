package render

import (
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

const baseCSS = `
body { font-family: Arial, sans-serif; margin: 20px; line-height: 1.6; }
h1 { color: #333; }
h2 { color: #444; margin-top: 30px; }
.summary { background: #f5f5f5; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
.summary-item { margin-bottom: 5px; }
.legend { display: flex; gap: 20px; margin-bottom: 20px; }
.legend-color { display: inline-block; width: 20px; height: 20px; margin-right: 5px; vertical-align: middle; }
.legend-green { background: #e8f5e9; border-left: 5px solid #4caf50; }
.legend-yellow { background: #fff8e1; border-left: 5px solid #ffc107; }
.legend-blue { background: #e3f2fd; border-left: 5px solid #2196f3; }
.date-header { background: #e0e0e0; padding: 8px; margin: 20px 0 10px; font-weight: bold; border-radius: 5px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
th, td { padding: 8px; text-align: left; border-bottom: 1px solid #ddd; }
th { background: #f2f2f2; }
.matched-row, .added { background: #e8f5e9; }
.missing-row, .modified { background: #fff8e1; }
.toggl-only-row { background: #e3f2fd; }
.action-tag { display: inline-block; background: #e0e0e0; padding: 2px 6px; border-radius: 3px; font-size: 0.85em; }
.no-entries { padding: 20px; text-align: center; color: #666; font-style: italic; }
`

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>GitLab-Toggl Comparison Results</title>
<style>{{.CSS}}</style>
</head>
<body>
<h1>GitLab-Toggl Comparison Results</h1>
<div class="summary">
<h2>Summary</h2>
{{with .Summary}}<div class="summary-item"><strong>GitLab Period:</strong> {{.FeedPeriod.Start}} to {{.FeedPeriod.End}}</div>
<div class="summary-item"><strong>Toggl Period:</strong> {{.LedgerPeriod.Start}} to {{.LedgerPeriod.End}}</div>
<div class="summary-item"><strong>Total GitLab Events:</strong> {{.TotalFeedEvents}}</div>
<div class="summary-item"><strong>Total Toggl Entries:</strong> {{.TotalLedgerEntries}}</div>
<div class="summary-item"><strong>Matched Entries:</strong> {{.MatchedCount}}</div>
<div class="summary-item"><strong>Missing Entries:</strong> {{.MissingCount}}</div>
<div class="summary-item"><strong>Toggl-Only Entries:</strong> {{.SourceOnlyCount}}</div>
{{if .SkippedRecords}}<div class="summary-item"><strong>Skipped Records:</strong> {{.SkippedRecords}}</div>{{end}}{{end}}
</div>
<div class="legend">
<div class="legend-item"><span class="legend-color legend-green"></span> Matched entries (already logged in Toggl)</div>
<div class="legend-item"><span class="legend-color legend-yellow"></span> Missing entries (need to be added to Toggl)</div>
<div class="legend-item"><span class="legend-color legend-blue"></span> Toggl-only entries (logged in Toggl, not in GitLab)</div>
</div>
<div class="entries-section">
<h2>GitLab-Toggl Entries</h2>
{{range .Days}}<div class="date-header">{{.Date}} - {{.Weekday}}</div>
<table>
<thead><tr><th>Time</th><th>Task</th><th>Project</th><th>Action</th><th>Status</th></tr></thead>
<tbody>
{{range .Rows}}<tr class="{{.Class}}"><td>{{.Time}}</td><td>{{.Task}}</td><td>{{.Project}}</td><td>{{if .IsAction}}<span class="action-tag">{{.Action}}</span>{{else}}{{.Action}}{{end}}</td><td>{{.Status}}</td></tr>
{{end}}</tbody>
</table>
{{else}}<div class="no-entries">No entries found!</div>
{{end}}</div>
{{if .Import}}<h2>Proposed Toggl Entries</h2>
<table>
<thead><tr><th>Date</th><th>Start</th><th>Description</th><th>Project</th><th>Occurrences</th><th>Duration</th><th>Tags</th></tr></thead>
<tbody>
{{range .Import}}<tr><td>{{.Date}}</td><td>{{.Start}}</td><td>{{.Description}}</td><td>{{.Project}}</td><td>{{.Count}}</td><td>{{.Duration}}</td><td>{{.Tags}}</td></tr>
{{end}}</tbody>
</table>
{{end}}</body>
</html>
`))

type reportView struct {
	CSS     template.CSS
	Summary reconcile.Summary
	Days    []reportDay
	Import  []importRow
}

type reportDay struct {
	Date    reconcile.Date
	Weekday string
	Rows    []reportRow
}

type reportRow struct {
	at       time.Time
	Time     string
	Task     string
	Project  string
	Action   string
	IsAction bool
	Status   string
	Class    string
}

type importRow struct {
	Date        reconcile.Date
	Start       string
	Description string
	Project     string
	Count       int
	Duration    string
	Tags        string
}

// ReportHTML writes r as a standalone HTML page. Days are listed newest
// first, rows within a day by time.
func ReportHTML(w io.Writer, r reconcile.Report) error {
	return reportTemplate.Execute(w, buildReportView(r))
}

func buildReportView(r reconcile.Report) reportView {
	byDate := make(map[reconcile.Date][]reportRow)
	add := func(e reconcile.Event, row reportRow) {
		row.at = e.Timestamp
		row.Time = e.Timestamp.Format("15:04:05")
		row.Task = e.Description
		row.Project = e.Project
		byDate[e.Date()] = append(byDate[e.Date()], row)
	}
	for _, e := range r.Missing {
		add(e, reportRow{Action: e.Action, IsAction: true, Status: "Missing", Class: "missing-row"})
	}
	for _, m := range r.Matched {
		add(m.Feed, reportRow{Action: m.Feed.Action, IsAction: true, Status: "Logged", Class: "matched-row"})
	}
	for _, e := range r.SourceOnly {
		add(e, reportRow{Action: durationText(e.Duration), Status: "Toggl Only", Class: "toggl-only-row"})
	}

	dates := make([]reconcile.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] > dates[j] })

	v := reportView{CSS: template.CSS(baseCSS), Summary: r.Summary}
	for _, d := range dates {
		rows := byDate[d]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })
		v.Days = append(v.Days, reportDay{Date: d, Weekday: weekday(string(d)), Rows: rows})
	}
	for _, s := range r.Import {
		v.Import = append(v.Import, importRow{
			Date:        s.Date,
			Start:       s.Start.Format(clockLayout),
			Description: s.Description,
			Project:     s.ProjectName,
			Count:       s.OccurrenceCount,
			Duration:    timecalc.FormatDuration(s.Duration),
			Tags:        joinTags(s.Tags),
		})
	}
	return v
}

func weekday(date string) string {
	t, err := time.Parse(timecalc.DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}
