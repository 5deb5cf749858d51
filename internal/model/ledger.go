package model

import (
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// LedgerFile is the time-entry snapshot written by `ttr toggl fetch`.
type LedgerFile struct {
	User          string           `json:"user"`
	Period        reconcile.Period `json:"period"`
	TotalDuration TotalDuration    `json:"total_duration"`
	Entries       []LedgerEntry    `json:"entries"`
}

// TotalDuration is the summed duration of a LedgerFile.
type TotalDuration struct {
	Hours     int64  `json:"hours"`
	Minutes   int64  `json:"minutes"`
	Formatted string `json:"formatted"`
}

// LedgerEntry is one Toggl time entry.
type LedgerEntry struct {
	ID                int64    `json:"id"`
	Date              string   `json:"date"`
	Description       string   `json:"description"`
	Project           string   `json:"project"`
	DurationSeconds   int64    `json:"duration_seconds"`
	DurationFormatted string   `json:"duration_formatted"`
	Tags              []string `json:"tags"`
	// TaskID is set when the entry was tagged with its task on import.
	TaskID string `json:"task_id,omitempty"`
}

// NewTotalDuration splits seconds into hours and minutes.
func NewTotalDuration(seconds int64) TotalDuration {
	return TotalDuration{
		Hours:     seconds / 3600,
		Minutes:   (seconds % 3600) / 60,
		Formatted: timecalc.FormatDuration(seconds),
	}
}

// ToEvents converts the snapshot into reconciliation events.
func (f LedgerFile) ToEvents() []reconcile.Event {
	out := make([]reconcile.Event, 0, len(f.Entries))
	for _, le := range f.Entries {
		ts, _ := timecalc.ParseTimestamp(le.Date)
		dur := le.DurationSeconds
		ev := reconcile.Event{
			Timestamp:   ts,
			Description: le.Description,
			Project:     le.Project,
			Action:      reconcile.LedgerAction,
			Duration:    &dur,
			Source:      reconcile.SourceLedger,
		}
		if le.TaskID != "" {
			ev.TaskID = reconcile.SomeTaskID(le.TaskID)
		}
		out = append(out, ev)
	}
	return out
}

// WithImport returns a copy of f with the import entries appended as ledger
// entries and the total updated. f is not modified.
func (f LedgerFile) WithImport(entries []reconcile.SquashedEntry) LedgerFile {
	out := f
	out.Entries = make([]LedgerEntry, 0, len(f.Entries)+len(entries))
	out.Entries = append(out.Entries, f.Entries...)

	var total int64
	for _, e := range f.Entries {
		total += e.DurationSeconds
	}
	for _, s := range entries {
		total += s.Duration
		tags := append([]string{}, s.Tags...)
		out.Entries = append(out.Entries, LedgerEntry{
			Date:              timecalc.FormatTimestamp(s.Start),
			Description:       s.Description,
			Project:           s.ProjectName,
			DurationSeconds:   s.Duration,
			DurationFormatted: timecalc.FormatDuration(s.Duration),
			Tags:              tags,
		})
	}
	out.TotalDuration = NewTotalDuration(total)
	return out
}
