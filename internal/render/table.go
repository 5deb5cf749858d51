package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
	"github.com/Tiliavir/trivial-time-reconciler/internal/toggl"
)

const clockLayout = "15:04"

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)
	tw.AppendHeader(header)
	return tw
}

// ReportTable writes the summary followed by one table per non-empty bucket.
func ReportTable(w io.Writer, r reconcile.Report) error {
	if _, err := fmt.Fprintln(w, Summary(r.Summary)); err != nil {
		return err
	}

	if len(r.Missing) > 0 {
		tw := newTable(w, "Missing in Toggl", table.Row{"Date", "Time", "Task", "Description", "Project", "Action"})
		for _, e := range r.Missing {
			tw.AppendRow(table.Row{e.Date(), e.Timestamp.Format(clockLayout), taskText(e.TaskID), e.Description, e.Project, e.Action})
		}
		tw.Render()
	}

	if len(r.Matched) > 0 {
		tw := newTable(w, "Logged", table.Row{"Date", "Task", "GitLab", "Toggl", "Duration"})
		for _, m := range r.Matched {
			tw.AppendRow(table.Row{m.Feed.Date(), taskText(m.Feed.TaskID), m.Feed.Description, m.Ledger.Description, durationText(m.Ledger.Duration)})
		}
		tw.Render()
	}

	if len(r.SourceOnly) > 0 {
		tw := newTable(w, "Toggl only", table.Row{"Date", "Time", "Task", "Description", "Project", "Duration"})
		for _, e := range r.SourceOnly {
			tw.AppendRow(table.Row{e.Date(), e.Timestamp.Format(clockLayout), taskText(e.TaskID), e.Description, e.Project, durationText(e.Duration)})
		}
		tw.Render()
	}

	if len(r.Import) > 0 {
		tw := newTable(w, "Proposed imports", table.Row{"Date", "Start", "Task", "Count", "Duration", "Project", "Tags"})
		var total int64
		for _, s := range r.Import {
			total += s.Duration
			tw.AppendRow(table.Row{s.Date, s.Start.Format(clockLayout), taskText(s.TaskID), s.OccurrenceCount,
				timecalc.FormatDuration(s.Duration), s.ProjectName, strings.Join(s.Tags, ", ")})
		}
		tw.AppendFooter(table.Row{"", "", "", "Total", timecalc.FormatDuration(total), "", ""})
		tw.Render()
	}

	if len(r.Skipped) > 0 {
		tw := newTable(w, "Skipped records", table.Row{"Source", "Index", "Reason"})
		for _, s := range r.Skipped {
			tw.AppendRow(table.Row{s.Source, s.Index, s.Reason})
		}
		tw.Render()
	}
	return nil
}

// Projects writes a workspace's projects.
func Projects(w io.Writer, projects []toggl.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}
	tw := newTable(w, "", table.Row{"ID", "Name", "Active"})
	for _, p := range projects {
		active := "no"
		if p.Active {
			active = "yes"
		}
		tw.AppendRow(table.Row{p.ID, p.Name, active})
	}
	tw.Render()
}

func taskText(id reconcile.TaskID) string {
	if v, ok := id.Get(); ok {
		return "#" + v
	}
	return "-"
}

func durationText(d *int64) string {
	if d == nil {
		return ""
	}
	return timecalc.FormatDuration(*d)
}
