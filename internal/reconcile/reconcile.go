package reconcile

// Options tunes a reconciliation run.
type Options struct {
	Unnumbered   UnnumberedPolicy
	FeedPeriod   Period
	LedgerPeriod Period
}

// Reconcile runs the whole pipeline: malformed records are skipped and
// counted, the rest are grouped by date, matched, and the missing set is
// squashed into import entries.
func Reconcile(feed, ledger []Event, opts Options) Report {
	validFeed, skippedFeed := partitionValid(feed, SourceActivityFeed)
	validLedger, skippedLedger := partitionValid(ledger, SourceLedger)

	res := Matcher{Unnumbered: opts.Unnumbered}.Match(GroupByDate(validFeed), GroupByDate(validLedger))

	return Assemble(AssembleInput{
		Result:       res,
		Squashed:     Squash(res.Missing),
		FeedPeriod:   opts.FeedPeriod,
		LedgerPeriod: opts.LedgerPeriod,
		FeedTotal:    len(feed),
		LedgerTotal:  len(ledger),
		Skipped:      append(skippedFeed, skippedLedger...),
	})
}
