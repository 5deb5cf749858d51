// Package reconcile correlates activity-feed events with time-ledger entries
// and proposes the entries needed to close the gaps.
package reconcile

import (
	"encoding/json"
	"time"
)

// Source identifies which collaborator produced an Event.
type Source string

const (
	SourceActivityFeed Source = "activity_feed"
	SourceLedger       Source = "ledger"
)

// LedgerAction is the action assigned to every ledger-side event.
const LedgerAction = "toggl-entry"

// Event is a source-agnostic activity record.
type Event struct {
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp" validate:"required"`
	Description string    `json:"description" yaml:"description" validate:"required,notblank"`
	Project     string    `json:"project,omitempty" yaml:"project,omitempty"`
	Action      string    `json:"action" yaml:"action" validate:"required,notblank"`
	TaskID      TaskID    `json:"task_id" yaml:"task_id"`
	// Duration is set for ledger events only.
	Duration *int64 `json:"duration,omitempty" yaml:"duration,omitempty" validate:"omitempty,gte=0"`
	Source   Source `json:"source" yaml:"source" validate:"required,oneof=activity_feed ledger"`
}

// Date returns the calendar date of the event's timestamp.
func (e Event) Date() Date {
	return DateOf(e.Timestamp)
}

// TaskID is an optional task identifier. The zero value holds no identifier.
type TaskID struct {
	value string
	ok    bool
}

// NoTaskID is the absent identifier.
var NoTaskID = TaskID{}

// SomeTaskID wraps a present identifier.
func SomeTaskID(id string) TaskID {
	return TaskID{value: id, ok: true}
}

// Get returns the identifier and whether it is present.
func (t TaskID) Get() (string, bool) {
	return t.value, t.ok
}

// Valid reports whether an identifier is present.
func (t TaskID) Valid() bool {
	return t.ok
}

func (t TaskID) String() string {
	if !t.ok {
		return ""
	}
	return t.value
}

// MarshalJSON encodes an absent identifier as null.
func (t TaskID) MarshalJSON() ([]byte, error) {
	if !t.ok {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON accepts a string, a number, or null.
func (t *TaskID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NoTaskID
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*t = NoTaskID
		} else {
			*t = SomeTaskID(s)
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = SomeTaskID(n.String())
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML encoders.
func (t TaskID) MarshalYAML() (any, error) {
	if !t.ok {
		return nil, nil
	}
	return t.value, nil
}

// Date is a calendar date formatted as YYYY-MM-DD. Dates sort lexically.
type Date string

// DateLayout is the layout of a Date.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Period is the date range a source covers, as reported by its collaborator.
type Period struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}
