package reconcile_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

func TestReconcileScenarioA_SingleMissing(t *testing.T) {
	feed := []reconcile.Event{feedEvent(at("2025-06-23", "10:15"), "#47502: fix X")}

	r := reconcile.Reconcile(feed, nil, reconcile.Options{})

	require.Len(t, r.Missing, 1)
	id, ok := r.Missing[0].TaskID.Get()
	assert.True(t, ok)
	assert.Equal(t, "47502", id)
	assert.Empty(t, r.Matched)
	assert.Empty(t, r.SourceOnly)
	require.Len(t, r.Import, 1)
	assert.EqualValues(t, 1800, r.Import[0].Duration)
}

func TestReconcileScenarioB_DuplicateFeedOneLedger(t *testing.T) {
	feed := []reconcile.Event{
		feedEvent(at("2025-06-23", "10:00"), "#100 implement"),
		feedEvent(at("2025-06-23", "15:00"), "#100 follow-up"),
	}
	ledger := []reconcile.Event{ledgerEvent(at("2025-06-23", "09:00"), "#100 implement", 3600)}

	r := reconcile.Reconcile(feed, ledger, reconcile.Options{})

	require.Len(t, r.Matched, 1)
	require.Len(t, r.Missing, 1)
	assert.Equal(t, "#100 follow-up", r.Missing[0].Description)
	assert.Empty(t, r.SourceOnly)
}

func TestReconcileScenarioC_LedgerWithoutID(t *testing.T) {
	feed := []reconcile.Event{feedEvent(at("2025-06-23", "10:00"), "standup notes")}
	ledger := []reconcile.Event{ledgerEvent(at("2025-06-23", "09:00"), "standup notes", 900)}

	r := reconcile.Reconcile(feed, ledger, reconcile.Options{})

	assert.Empty(t, r.Matched)
	require.Len(t, r.SourceOnly, 1)
	assert.Equal(t, "standup notes", r.SourceOnly[0].Description)
}

func TestReconcileScenarioD_SquashThree(t *testing.T) {
	feed := []reconcile.Event{
		feedEvent(at("2025-06-23", "09:00"), "#200 a"),
		feedEvent(at("2025-06-23", "11:00"), "#200 b"),
		feedEvent(at("2025-06-23", "13:00"), "#200 c"),
	}
	ledger := []reconcile.Event{ledgerEvent(at("2025-06-22", "09:00"), "#200 yesterday", 1800)}

	r := reconcile.Reconcile(feed, ledger, reconcile.Options{})

	require.Len(t, r.Import, 1)
	assert.Equal(t, 3, r.Import[0].OccurrenceCount)
	assert.EqualValues(t, 5400, r.Import[0].Duration)
	assert.Len(t, r.SourceOnly, 1)
}

func TestReconcileScenarioE_MalformedFeedRecord(t *testing.T) {
	bad := feedEvent(time.Time{}, "#1 no timestamp")
	feed := []reconcile.Event{
		bad,
		feedEvent(at("2025-06-23", "10:00"), "#2 ok"),
	}

	var r reconcile.Report
	require.NotPanics(t, func() {
		r = reconcile.Reconcile(feed, nil, reconcile.Options{})
	})

	assert.Equal(t, 1, r.Summary.SkippedRecords)
	assert.Equal(t, 1, r.Summary.SkippedFeedEvents)
	assert.Equal(t, 2, r.Summary.TotalFeedEvents)
	require.Len(t, r.Missing, 1)
	assert.Equal(t, "#2 ok", r.Missing[0].Description)
	for _, m := range r.Matched {
		assert.NotEqual(t, bad.Description, m.Feed.Description)
	}
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, 0, r.Skipped[0].Index)
	assert.Contains(t, r.Skipped[0].Reason, "timestamp")
}

func TestReconcileEmptyInputs(t *testing.T) {
	ledger := []reconcile.Event{
		ledgerEvent(at("2025-06-23", "09:00"), "#1", 60),
		ledgerEvent(at("2025-06-24", "09:00"), "misc", 60),
	}

	r := reconcile.Reconcile(nil, ledger, reconcile.Options{})

	assert.Empty(t, r.Matched)
	assert.Empty(t, r.Missing)
	assert.Len(t, r.SourceOnly, 2)
	assert.Equal(t, 2, r.Summary.SourceOnlyCount)
	assert.Zero(t, r.Summary.MatchedCount)

	r = reconcile.Reconcile(nil, nil, reconcile.Options{})
	assert.Zero(t, r.Summary.TotalFeedEvents)
	assert.NotNil(t, r.Missing)
}

func TestReconcileSummary(t *testing.T) {
	feed := []reconcile.Event{
		feedEvent(at("2025-06-23", "10:00"), "#1"),
		feedEvent(at("2025-06-23", "11:00"), "#2"),
		feedEvent(at("2025-06-23", "12:00"), "#2"),
		feedEvent(at("2025-06-23", "13:00"), "no id"),
	}
	ledger := []reconcile.Event{
		ledgerEvent(at("2025-06-23", "09:00"), "#1", 60),
		ledgerEvent(at("2025-06-23", "09:30"), "#3", 60),
	}
	opts := reconcile.Options{
		Unnumbered:   reconcile.UnnumberedSkip,
		FeedPeriod:   reconcile.Period{Start: "2025-06-01", End: "2025-06-30"},
		LedgerPeriod: reconcile.Period{Start: "2025-06-01", End: "2025-06-29"},
	}

	s := reconcile.Reconcile(feed, ledger, opts).Summary

	assert.Equal(t, reconcile.Summary{
		FeedPeriod:           opts.FeedPeriod,
		LedgerPeriod:         opts.LedgerPeriod,
		TotalFeedEvents:      4,
		TotalLedgerEntries:   2,
		MatchedCount:         1,
		MissingCount:         2,
		SourceOnlyCount:      1,
		SquashedCount:        1,
		UnnumberedFeedEvents: 1,
	}, s)
}

func TestValidate(t *testing.T) {
	ok := feedEvent(at("2025-06-23", "10:00"), "#1")
	assert.NoError(t, reconcile.Validate(ok))

	noAction := ok
	noAction.Action = ""
	err := reconcile.Validate(noAction)
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrMalformedEvent))
	assert.Contains(t, err.Error(), "action")

	noDesc := ok
	noDesc.Description = ""
	assert.ErrorIs(t, reconcile.Validate(noDesc), reconcile.ErrMalformedEvent)

	negative := ledgerEvent(at("2025-06-23", "10:00"), "#1", -5)
	assert.ErrorIs(t, reconcile.Validate(negative), reconcile.ErrMalformedEvent)

	blankDesc := ok
	blankDesc.Description = "   \t"
	err = reconcile.Validate(blankDesc)
	assert.ErrorIs(t, err, reconcile.ErrMalformedEvent)
	assert.Contains(t, err.Error(), "description")

	blankAction := ok
	blankAction.Action = " "
	assert.ErrorIs(t, reconcile.Validate(blankAction), reconcile.ErrMalformedEvent)
}

func TestReconcileSkipsBlankDescription(t *testing.T) {
	feed := []reconcile.Event{
		feedEvent(at("2025-06-23", "10:00"), "   "),
		feedEvent(at("2025-06-23", "11:00"), "#1 real work"),
	}

	r := reconcile.Reconcile(feed, nil, reconcile.Options{})

	require.Len(t, r.Missing, 1)
	assert.Equal(t, "#1 real work", r.Missing[0].Description)
	require.Len(t, r.Import, 1)
	assert.Equal(t, "#1 real work", r.Import[0].Description)
	assert.Equal(t, 1, r.Summary.SkippedFeedEvents)
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, 0, r.Skipped[0].Index)
}

func TestReportJSONFieldNames(t *testing.T) {
	r := reconcile.Reconcile(
		[]reconcile.Event{feedEvent(at("2025-06-23", "10:00"), "#1")},
		nil,
		reconcile.Options{},
	)
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"summary", "matched_entries", "missing_entries", "toggl_only_entries", "toggl_import_data"} {
		assert.Contains(t, raw, key)
	}

	var imports []map[string]any
	require.NoError(t, json.Unmarshal(raw["toggl_import_data"], &imports))
	require.Len(t, imports, 1)
	for _, key := range []string{"description", "start", "duration", "project_name", "tags"} {
		assert.Contains(t, imports[0], key)
	}
	assert.EqualValues(t, 1800, imports[0]["duration"])
}

func TestAssembleDoesNotReorderInputs(t *testing.T) {
	missing := []reconcile.Event{
		feedEvent(at("2025-06-24", "10:00"), "#2"),
		feedEvent(at("2025-06-23", "10:00"), "#1"),
	}
	in := reconcile.AssembleInput{Result: reconcile.MatchResult{Missing: missing}}

	r := reconcile.Assemble(in)

	assert.Equal(t, "#2", r.Missing[0].Description)
	r.Missing[0].Description = "changed"
	assert.Equal(t, "#2", missing[0].Description)
}
