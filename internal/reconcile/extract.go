package reconcile

import "regexp"

// taskMarker matches a task reference such as "#47502".
var taskMarker = regexp.MustCompile(`#(\d+)`)

// ExtractTaskID returns the digits of the first "#<digits>" marker in
// description, or NoTaskID when there is none.
func ExtractTaskID(description string) TaskID {
	m := taskMarker.FindStringSubmatch(description)
	if m == nil {
		return NoTaskID
	}
	return SomeTaskID(m[1])
}

// withTaskID returns a copy of e with its task id resolved. A ledger event
// that already carries an id keeps it.
func withTaskID(e Event) Event {
	if e.Source == SourceLedger && e.TaskID.Valid() {
		return e
	}
	e.TaskID = ExtractTaskID(e.Description)
	return e
}
