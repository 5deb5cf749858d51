package reconcile

// Summary carries the counts of one reconciliation run.
type Summary struct {
	FeedPeriod           Period `json:"gitlab_period" yaml:"gitlab_period"`
	LedgerPeriod         Period `json:"toggl_period" yaml:"toggl_period"`
	TotalFeedEvents      int    `json:"total_gitlab_events" yaml:"total_gitlab_events"`
	TotalLedgerEntries   int    `json:"total_toggl_entries" yaml:"total_toggl_entries"`
	MatchedCount         int    `json:"matched_entries_count" yaml:"matched_entries_count"`
	MissingCount         int    `json:"missing_entries_count" yaml:"missing_entries_count"`
	SourceOnlyCount      int    `json:"toggl_only_entries_count" yaml:"toggl_only_entries_count"`
	SquashedCount        int    `json:"squashed_entries_count" yaml:"squashed_entries_count"`
	UnnumberedFeedEvents int    `json:"unnumbered_gitlab_events" yaml:"unnumbered_gitlab_events"`
	SkippedFeedEvents    int    `json:"skipped_gitlab_events" yaml:"skipped_gitlab_events"`
	SkippedLedgerEntries int    `json:"skipped_toggl_entries" yaml:"skipped_toggl_entries"`
	SkippedRecords       int    `json:"skipped_records" yaml:"skipped_records"`
}

// Report is the outcome of a reconciliation, in the layout downstream
// renderers and importers consume.
type Report struct {
	Summary    Summary         `json:"summary" yaml:"summary"`
	Matched    []Pair          `json:"matched_entries" yaml:"matched_entries"`
	Missing    []Event         `json:"missing_entries" yaml:"missing_entries"`
	SourceOnly []Event         `json:"toggl_only_entries" yaml:"toggl_only_entries"`
	Import     []SquashedEntry `json:"toggl_import_data" yaml:"toggl_import_data"`
	Skipped    []Skipped       `json:"skipped_records,omitempty" yaml:"skipped_records,omitempty"`
}

// AssembleInput gathers everything Assemble summarises.
type AssembleInput struct {
	Result       MatchResult
	Squashed     []SquashedEntry
	FeedPeriod   Period
	LedgerPeriod Period
	// FeedTotal and LedgerTotal count the records received, skipped ones
	// included.
	FeedTotal   int
	LedgerTotal int
	Skipped     []Skipped
}

// Assemble builds a Report. The slices in in are copied, never reordered.
func Assemble(in AssembleInput) Report {
	r := Report{
		Matched:    append([]Pair{}, in.Result.Matched...),
		Missing:    append([]Event{}, in.Result.Missing...),
		SourceOnly: append([]Event{}, in.Result.SourceOnly...),
		Import:     append([]SquashedEntry{}, in.Squashed...),
		Skipped:    append([]Skipped(nil), in.Skipped...),
	}
	s := Summary{
		FeedPeriod:           in.FeedPeriod,
		LedgerPeriod:         in.LedgerPeriod,
		TotalFeedEvents:      in.FeedTotal,
		TotalLedgerEntries:   in.LedgerTotal,
		MatchedCount:         len(r.Matched),
		MissingCount:         len(r.Missing),
		SourceOnlyCount:      len(r.SourceOnly),
		SquashedCount:        len(r.Import),
		UnnumberedFeedEvents: len(in.Result.Unnumbered),
		SkippedRecords:       len(in.Skipped),
	}
	for _, sk := range in.Skipped {
		switch sk.Source {
		case SourceActivityFeed:
			s.SkippedFeedEvents++
		case SourceLedger:
			s.SkippedLedgerEntries++
		}
	}
	r.Summary = s
	return r
}
