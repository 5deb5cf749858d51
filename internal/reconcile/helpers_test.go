package reconcile_test

import (
	"time"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

func at(date, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func feedEvent(ts time.Time, desc string) reconcile.Event {
	return reconcile.Event{
		Timestamp:   ts,
		Description: desc,
		Project:     "backend",
		Action:      "Pushed To",
		Source:      reconcile.SourceActivityFeed,
	}
}

func ledgerEvent(ts time.Time, desc string, seconds int64) reconcile.Event {
	return reconcile.Event{
		Timestamp:   ts,
		Description: desc,
		Project:     "backend",
		Action:      reconcile.LedgerAction,
		Duration:    &seconds,
		Source:      reconcile.SourceLedger,
	}
}
