package model

import (
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// FeedFile is the activity snapshot written by `ttr gitlab fetch`.
type FeedFile struct {
	User   string           `json:"user"`
	Name   string           `json:"name"`
	Period reconcile.Period `json:"period"`
	Events []FeedEvent      `json:"events"`
}

// FeedEvent is one GitLab activity record.
type FeedEvent struct {
	Date    string      `json:"date"`
	Action  string      `json:"action"`
	Project string      `json:"project"`
	Details FeedDetails `json:"details"`
}

// FeedDetails holds the optional parts of a FeedEvent.
type FeedDetails struct {
	Target      string `json:"target,omitempty"`
	CommitTitle string `json:"commit_title,omitempty"`
	Commits     int    `json:"commits,omitempty"`
	Branch      string `json:"branch,omitempty"`
}

// Description is the free text a task id is read from: the target title,
// or the commit title for pushes.
func (e FeedEvent) Description() string {
	if e.Details.Target != "" {
		return e.Details.Target
	}
	return e.Details.CommitTitle
}

// ToEvents converts the snapshot into reconciliation events. Records whose
// date cannot be parsed get a zero timestamp and are rejected downstream.
func (f FeedFile) ToEvents() []reconcile.Event {
	out := make([]reconcile.Event, 0, len(f.Events))
	for _, fe := range f.Events {
		ts, _ := timecalc.ParseTimestamp(fe.Date)
		out = append(out, reconcile.Event{
			Timestamp:   ts,
			Description: fe.Description(),
			Project:     fe.Project,
			Action:      fe.Action,
			Source:      reconcile.SourceActivityFeed,
		})
	}
	return out
}
