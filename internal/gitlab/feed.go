package gitlab

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/trivial-time-reconciler/internal/model"
	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

// projectLookups bounds concurrent project-name requests.
const projectLookups = 4

// FetchOptions selects the events of a feed snapshot.
type FetchOptions struct {
	From time.Time
	To   time.Time
	// EventType keeps only events whose action contains it, case-insensitively.
	EventType string
}

// FetchFeed collects the user's activity in the requested window, newest
// first, with project names resolved.
func (c *Client) FetchFeed(ctx context.Context, opts FetchOptions) (model.FeedFile, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return model.FeedFile{}, err
	}

	events, err := c.Events(ctx, opts.From, opts.To)
	if err != nil {
		return model.FeedFile{}, err
	}
	events = filterByAction(events, opts.EventType)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	names, err := c.projectNames(ctx, events)
	if err != nil {
		return model.FeedFile{}, err
	}

	feed := model.FeedFile{
		User: user.Username,
		Name: user.Name,
		Period: reconcile.Period{
			Start: opts.From.Format(timecalc.DateLayout),
			End:   opts.To.Format(timecalc.DateLayout),
		},
		Events: make([]model.FeedEvent, 0, len(events)),
	}
	for _, e := range events {
		feed.Events = append(feed.Events, toFeedEvent(e, names))
	}
	return feed, nil
}

func filterByAction(events []Event, eventType string) []Event {
	if eventType == "" {
		return events
	}
	want := strings.ToLower(eventType)
	out := events[:0:0]
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.ActionName), want) {
			out = append(out, e)
		}
	}
	return out
}

// projectNames resolves every distinct project id. A project that cannot be
// read is labelled by its id instead of failing the fetch.
func (c *Client) projectNames(ctx context.Context, events []Event) (map[int64]string, error) {
	var ids []int64
	seen := map[int64]bool{}
	for _, e := range events {
		if e.ProjectID == 0 || seen[e.ProjectID] {
			continue
		}
		seen[e.ProjectID] = true
		ids = append(ids, e.ProjectID)
	}

	resolved := make([]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(projectLookups)
	for i, id := range ids {
		g.Go(func() error {
			name, err := c.ProjectName(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("cannot resolve project name", "project_id", id, "error", err)
				name = fmt.Sprintf("Project ID: %d", id)
			}
			resolved[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(ids))
	for i, id := range ids {
		names[id] = resolved[i]
	}
	return names, nil
}

func toFeedEvent(e Event, names map[int64]string) model.FeedEvent {
	project := "Unknown Project"
	if e.ProjectID != 0 {
		project = names[e.ProjectID]
	}
	fe := model.FeedEvent{
		Date:    timecalc.FormatTimestamp(e.CreatedAt),
		Action:  ActionText(e.ActionName),
		Project: project,
		Details: model.FeedDetails{Target: e.TargetTitle},
	}
	if e.PushData != nil {
		fe.Details.Commits = e.PushData.CommitCount
		fe.Details.Branch = e.PushData.Ref
		fe.Details.CommitTitle = e.PushData.CommitTitle
	}
	return fe
}

// ActionText turns an action name such as "pushed_to" or "pushed to" into
// "Pushed To".
func ActionText(actionName string) string {
	words := strings.Fields(strings.ReplaceAll(actionName, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
