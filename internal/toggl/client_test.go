package toggl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
	"github.com/Tiliavir/trivial-time-reconciler/internal/toggl"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(t *testing.T, h http.Handler) *toggl.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := toggl.NewClient(toggl.Options{
		APIToken: "tok",
		BaseURL:  srv.URL,
		Limiter:  rate.NewLimiter(rate.Inf, 1),
		Logger:   quietLogger,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeToggl serves a workspace with two projects and one existing entry.
type fakeToggl struct {
	t       *testing.T
	mu      sync.Mutex
	created []map[string]any
	entries []map[string]any
}

func (f *fakeToggl) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(f.t, ok)
		assert.Equal(f.t, "tok", user)
		assert.Equal(f.t, "api_token", pass)
		writeJSON(w, map[string]any{"id": 1, "email": "jane@example.com", "fullname": "Jane Doe", "default_workspace_id": 7})
	})
	mux.HandleFunc("/me/time_entries", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(f.t, r.URL.Query().Get("start_date"))
		assert.NotEmpty(f.t, r.URL.Query().Get("end_date"))
		writeJSON(w, f.entries)
	})
	mux.HandleFunc("/workspaces/7/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": 3, "name": "Backend", "active": true},
			{"id": 4, "name": "Infra", "active": false},
		})
	})
	mux.HandleFunc("/workspaces/7/time_entries", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		body["id"] = 99
		writeJSON(w, body)
	})
	return mux
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := toggl.NewClient(toggl.Options{})
	assert.True(t, errors.Is(err, toggl.ErrMissingCredentials))
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	_, err := c.Me(context.Background())
	assert.True(t, errors.Is(err, toggl.ErrUnauthorized))
}

func TestFetchLedger(t *testing.T) {
	fake := &fakeToggl{t: t, entries: []map[string]any{
		{"id": 1, "description": "#47502: review", "start": "2025-06-23T08:00:00Z", "duration": 1800, "project_id": 3, "tags": []string{"review"}},
		{"id": 2, "description": "running", "start": "2025-06-24T08:00:00Z", "duration": -1750000000},
		{"id": 3, "description": "standup", "start": "2025-06-24T07:00:00Z", "duration": 900},
		{"id": 4, "description": "#12 ops", "start": "2025-06-22T07:00:00Z", "duration": 3600, "project_id": 9},
	}}
	c := newTestClient(t, fake.handler())

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 6, 30, 23, 59, 59, 0, time.Local)
	ledger, err := c.FetchLedger(context.Background(), toggl.FetchOptions{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", ledger.User)
	assert.Equal(t, reconcile.Period{Start: "2025-06-01", End: "2025-06-30"}, ledger.Period)
	require.Len(t, ledger.Entries, 3)

	assert.Equal(t, int64(3), ledger.Entries[0].ID)
	assert.Equal(t, toggl.NoProject, ledger.Entries[0].Project)
	assert.Equal(t, []string{}, ledger.Entries[0].Tags)
	assert.Equal(t, "15m", ledger.Entries[0].DurationFormatted)

	assert.Equal(t, int64(1), ledger.Entries[1].ID)
	assert.Equal(t, "Backend", ledger.Entries[1].Project)
	assert.Equal(t, timecalc.FormatTimestamp(time.Date(2025, 6, 23, 8, 0, 0, 0, time.UTC)), ledger.Entries[1].Date)

	assert.Equal(t, "Project ID: 9", ledger.Entries[2].Project)

	assert.Equal(t, int64(1), ledger.TotalDuration.Hours)
	assert.Equal(t, int64(45), ledger.TotalDuration.Minutes)
	assert.Equal(t, "1h 45m", ledger.TotalDuration.Formatted)
}

func importEntries() []reconcile.SquashedEntry {
	start := time.Date(2025, 6, 23, 10, 0, 0, 0, time.UTC)
	return []reconcile.SquashedEntry{
		{Description: "#1 existing", Start: start, Duration: 1800, ProjectName: "backend", Tags: []string{"gitlab-import", "squashed"}},
		{Description: "#2 new", Start: start.Add(time.Hour), Duration: 3600, ProjectName: "backend", Tags: []string{"gitlab-import", "squashed", "pushed-to"}},
		{Description: "#3 elsewhere", Start: start.Add(2 * time.Hour), Duration: 1800, ProjectName: "unknown"},
		{Description: "#4 broken", Start: start, Duration: 0},
	}
}

func TestImport(t *testing.T) {
	fake := &fakeToggl{t: t, entries: []map[string]any{
		{"id": 50, "description": "#1 existing", "start": "2025-06-23T10:00:00Z", "duration": 1800},
	}}
	c := newTestClient(t, fake.handler())

	var out bytes.Buffer
	res, err := c.Import(context.Background(), importEntries(), toggl.ImportOptions{
		WorkspaceID:      7,
		DefaultProjectID: 42,
		Out:              &out,
	})
	require.NoError(t, err)
	assert.Equal(t, toggl.ImportResult{Imported: 2, Skipped: 1, Errors: 1}, res)

	require.Len(t, fake.created, 2)
	assert.Equal(t, "#2 new", fake.created[0]["description"])
	assert.EqualValues(t, 3, fake.created[0]["project_id"])
	assert.EqualValues(t, 3600, fake.created[0]["duration"])
	assert.EqualValues(t, 7, fake.created[0]["workspace_id"])
	assert.Equal(t, toggl.CreatedWith, fake.created[0]["created_with"])
	assert.Equal(t, "2025-06-23T11:00:00Z", fake.created[0]["start"])
	assert.Equal(t, []any{"gitlab-import", "squashed", "pushed-to"}, fake.created[0]["tags"])

	assert.EqualValues(t, 42, fake.created[1]["project_id"])

	assert.Contains(t, out.String(), "Skipped:  #1 existing (already exists)")
	assert.Contains(t, out.String(), "Imported: #2 new (1h 0m)")
}

func TestImportDryRun(t *testing.T) {
	fake := &fakeToggl{t: t}
	c := newTestClient(t, fake.handler())

	res, err := c.Import(context.Background(), importEntries()[:3], toggl.ImportOptions{
		DryRun: true,
		Out:    io.Discard,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Empty(t, fake.created)
}

func TestImportNothing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}))
	res, err := c.Import(context.Background(), nil, toggl.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, toggl.ImportResult{}, res)
}
