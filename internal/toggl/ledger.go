package toggl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// NoProject names entries without a project.
const NoProject = "No Project"

// FetchOptions selects the entries of a ledger snapshot.
type FetchOptions struct {
	From time.Time
	To   time.Time
	// WorkspaceID is used to resolve project names. Zero means the user's
	// default workspace.
	WorkspaceID int64
}

// FetchLedger collects the user's stopped time entries in the requested
// window, newest first.
func (c *Client) FetchLedger(ctx context.Context, opts FetchOptions) (model.LedgerFile, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return model.LedgerFile{}, err
	}
	wid := opts.WorkspaceID
	if wid == 0 {
		wid = me.DefaultWorkspaceID
	}

	entries, err := c.TimeEntries(ctx, opts.From, opts.To)
	if err != nil {
		return model.LedgerFile{}, fmt.Errorf("fetching time entries: %w", err)
	}

	projects, err := c.Projects(ctx, wid)
	if err != nil {
		return model.LedgerFile{}, fmt.Errorf("fetching projects: %w", err)
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.After(entries[j].Start)
	})

	ledger := model.LedgerFile{
		User: me.DisplayName(),
		Period: reconcile.Period{
			Start: opts.From.Format(timecalc.DateLayout),
			End:   opts.To.Format(timecalc.DateLayout),
		},
		Entries: make([]model.LedgerEntry, 0, len(entries)),
	}
	var total int64
	for _, e := range entries {
		if e.Duration < 0 {
			c.logger.Debug("skipping running time entry", "id", e.ID)
			continue
		}
		total += e.Duration
		ledger.Entries = append(ledger.Entries, toLedgerEntry(e, names))
	}
	ledger.TotalDuration = model.NewTotalDuration(total)
	return ledger, nil
}

func toLedgerEntry(e TimeEntry, names map[int64]string) model.LedgerEntry {
	project := NoProject
	if e.ProjectID != nil {
		if name, ok := names[*e.ProjectID]; ok {
			project = name
		} else {
			project = fmt.Sprintf("Project ID: %d", *e.ProjectID)
		}
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.LedgerEntry{
		ID:                e.ID,
		Date:              timecalc.FormatTimestamp(e.Start),
		Description:       e.Description,
		Project:           project,
		DurationSeconds:   e.Duration,
		DurationFormatted: timecalc.FormatDuration(e.Duration),
		Tags:              tags,
	}
}
