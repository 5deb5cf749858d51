package reconcile

import "fmt"

// UnnumberedPolicy decides where feed events without a task id go.
type UnnumberedPolicy int

const (
	// UnnumberedMissing routes id-less feed events to Missing.
	UnnumberedMissing UnnumberedPolicy = iota
	// UnnumberedSkip leaves id-less feed events out of every bucket and
	// reports them in MatchResult.Unnumbered.
	UnnumberedSkip
)

func (p UnnumberedPolicy) String() string {
	switch p {
	case UnnumberedSkip:
		return "skip"
	default:
		return "missing"
	}
}

// ParseUnnumberedPolicy parses "missing" or "skip". The empty string selects
// UnnumberedMissing.
func ParseUnnumberedPolicy(s string) (UnnumberedPolicy, error) {
	switch s {
	case "", "missing":
		return UnnumberedMissing, nil
	case "skip":
		return UnnumberedSkip, nil
	}
	return UnnumberedMissing, fmt.Errorf("unknown unnumbered policy %q (want missing or skip)", s)
}

// Pair is a feed event together with the ledger event that covers it.
type Pair struct {
	Feed   Event `json:"feed" yaml:"feed"`
	Ledger Event `json:"ledger" yaml:"ledger"`
}

// MatchResult holds the classification of both sources.
type MatchResult struct {
	Matched    []Pair
	Missing    []Event
	SourceOnly []Event
	// Unnumbered holds id-less feed events dropped under UnnumberedSkip.
	Unnumbered []Event
}

// Matcher classifies feed and ledger events date by date.
type Matcher struct {
	Unnumbered UnnumberedPolicy
}

// Match classifies with the default policy.
func Match(feed, ledger DateGroups) MatchResult {
	return Matcher{}.Match(feed, ledger)
}

// Match walks the union of dates in ascending order. On each date a feed
// event is paired with the first ledger event of that date carrying the same
// task id that has not been paired yet; a ledger event covers at most one
// feed event. Unpaired ledger events end up in SourceOnly in input order.
func (m Matcher) Match(feed, ledger DateGroups) MatchResult {
	var res MatchResult
	for _, d := range unionDates(feed, ledger) {
		m.matchDate(feed.Events(d), ledger.Events(d), &res)
	}
	return res
}

func (m Matcher) matchDate(feedEvents, ledgerEvents []Event, res *MatchResult) {
	ledgerIDs := make([]Event, len(ledgerEvents))
	pool := make(map[string][]int)
	for i, le := range ledgerEvents {
		le = withTaskID(le)
		ledgerIDs[i] = le
		if id, ok := le.TaskID.Get(); ok {
			pool[id] = append(pool[id], i)
		}
	}
	consumed := make([]bool, len(ledgerEvents))

	for _, fe := range feedEvents {
		fe = withTaskID(fe)
		id, ok := fe.TaskID.Get()
		if !ok {
			if m.Unnumbered == UnnumberedSkip {
				res.Unnumbered = append(res.Unnumbered, fe)
			} else {
				res.Missing = append(res.Missing, fe)
			}
			continue
		}
		idx := -1
		for _, i := range pool[id] {
			if !consumed[i] {
				idx = i
				break
			}
		}
		if idx < 0 {
			res.Missing = append(res.Missing, fe)
			continue
		}
		consumed[idx] = true
		res.Matched = append(res.Matched, Pair{Feed: fe, Ledger: ledgerIDs[idx]})
	}

	for i, le := range ledgerIDs {
		if !consumed[i] {
			res.SourceOnly = append(res.SourceOnly, le)
		}
	}
}
