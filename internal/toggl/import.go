package toggl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// ImportResult holds counters for an import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   int
}

// ImportOptions configures an import run.
type ImportOptions struct {
	// WorkspaceID receives the entries. Zero means the user's default workspace.
	WorkspaceID int64
	// DefaultProjectID is used when an entry's project name is unknown.
	DefaultProjectID int64
	DryRun           bool
	// Out receives progress lines. Defaults to stdout.
	Out io.Writer
}

type entryKey struct {
	description string
	start       int64
}

func keyOf(description string, start time.Time) entryKey {
	return entryKey{description: description, start: start.Truncate(time.Second).Unix()}
}

// Import creates a time entry for every squashed entry not already present in
// the workspace. An entry is present when one with the same description and
// start exists. Per-entry failures are counted and do not stop the run.
func (c *Client) Import(ctx context.Context, entries []reconcile.SquashedEntry, opts ImportOptions) (ImportResult, error) {
	var result ImportResult
	if len(entries) == 0 {
		return result, nil
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	wid := opts.WorkspaceID
	if wid == 0 {
		me, err := c.Me(ctx)
		if err != nil {
			return result, err
		}
		wid = me.DefaultWorkspaceID
	}

	projects, err := c.Projects(ctx, wid)
	if err != nil {
		return result, fmt.Errorf("fetching projects: %w", err)
	}
	projectIDs := make(map[string]int64, len(projects))
	for _, p := range projects {
		projectIDs[strings.ToLower(p.Name)] = p.ID
	}

	existing, err := c.existingKeys(ctx, entries)
	if err != nil {
		return result, err
	}

	for _, e := range entries {
		if e.Description == "" || e.Start.IsZero() || e.Duration <= 0 {
			fmt.Fprintf(out, "  ! Invalid entry %q: needs description, start and a positive duration\n", e.Description)
			result.Errors++
			continue
		}

		key := keyOf(e.Description, e.Start)
		if existing[key] {
			fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", e.Description)
			result.Skipped++
			continue
		}

		entry := NewTimeEntry{
			Description: e.Description,
			Start:       e.Start.UTC(),
			Duration:    e.Duration,
			ProjectID:   resolveProject(projectIDs, e.ProjectName, opts.DefaultProjectID),
			Tags:        e.Tags,
			WorkspaceID: wid,
		}
		if !opts.DryRun {
			if _, err := c.CreateTimeEntry(ctx, entry); err != nil {
				fmt.Fprintf(out, "  ! Error importing %q: %v\n", e.Description, err)
				result.Errors++
				continue
			}
		}
		existing[key] = true
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", e.Description, timecalc.FormatDuration(e.Duration))
		result.Imported++
	}
	return result, nil
}

// existingKeys loads the entries already covering the import window.
func (c *Client) existingKeys(ctx context.Context, entries []reconcile.SquashedEntry) (map[entryKey]bool, error) {
	var from, to time.Time
	for _, e := range entries {
		if e.Start.IsZero() {
			continue
		}
		if from.IsZero() || e.Start.Before(from) {
			from = e.Start
		}
		if end := e.Start.Add(time.Duration(e.Duration) * time.Second); end.After(to) {
			to = end
		}
	}
	keys := make(map[entryKey]bool)
	if from.IsZero() {
		return keys, nil
	}
	current, err := c.TimeEntries(ctx, timecalc.StartOfDay(from), timecalc.EndOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("fetching existing entries: %w", err)
	}
	for _, te := range current {
		keys[keyOf(te.Description, te.Start)] = true
	}
	return keys, nil
}

func resolveProject(ids map[string]int64, name string, fallback int64) *int64 {
	if id, ok := ids[strings.ToLower(name)]; ok && name != "" {
		return &id
	}
	if fallback != 0 {
		return &fallback
	}
	return nil
}
