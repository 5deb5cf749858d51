package reconcile

import (
	"strings"
	"time"
)

const (
	// SecondsPerOccurrence is the time credited to one missing occurrence.
	SecondsPerOccurrence = 1800

	TagImport   = "gitlab-import"
	TagSquashed = "squashed"
)

// SquashedEntry collapses the missing occurrences of one task on one day.
type SquashedEntry struct {
	Date            Date      `json:"date" yaml:"date"`
	TaskID          TaskID    `json:"task_id" yaml:"task_id"`
	OccurrenceCount int       `json:"occurrence_count" yaml:"occurrence_count"`
	Description     string    `json:"description" yaml:"description"`
	Start           time.Time `json:"start" yaml:"start"`
	Duration        int64     `json:"duration" yaml:"duration"`
	ProjectName     string    `json:"project_name" yaml:"project_name"`
	Tags            []string  `json:"tags" yaml:"tags"`
}

type squashKey struct {
	date Date
	id   string
}

// Squash groups missing events by (date, task id). Events without a task id
// are never merged. Entries appear in the order of each group's first
// occurrence in missing.
func Squash(missing []Event) []SquashedEntry {
	var groups [][]Event
	index := make(map[squashKey]int)
	for _, e := range missing {
		e = withTaskID(e)
		id, ok := e.TaskID.Get()
		if !ok {
			groups = append(groups, []Event{e})
			continue
		}
		k := squashKey{date: e.Date(), id: id}
		if gi, seen := index[k]; seen {
			groups[gi] = append(groups[gi], e)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, []Event{e})
	}

	out := make([]SquashedEntry, 0, len(groups))
	for _, g := range groups {
		out = append(out, squashGroup(g))
	}
	return out
}

func squashGroup(g []Event) SquashedEntry {
	first := g[0]
	for _, e := range g[1:] {
		if e.Timestamp.Before(first.Timestamp) {
			first = e
		}
	}
	n := len(g)
	return SquashedEntry{
		Date:            first.Date(),
		TaskID:          first.TaskID,
		OccurrenceCount: n,
		Description:     first.Description,
		Start:           first.Timestamp,
		Duration:        int64(n) * SecondsPerOccurrence,
		ProjectName:     first.Project,
		Tags:            squashTags(first.Action),
	}
}

// squashTags returns the import tags followed by the action tag, without
// duplicates.
func squashTags(action string) []string {
	tags := []string{TagImport, TagSquashed}
	slug := ActionTag(action)
	if slug != "" && slug != TagImport && slug != TagSquashed {
		tags = append(tags, slug)
	}
	return tags
}

// ActionTag turns an action such as "Pushed To" into the tag "pushed-to".
func ActionTag(action string) string {
	return strings.Join(strings.Fields(strings.ToLower(action)), "-")
}
