package toggl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Toggl Track v9 API.
const DefaultBaseURL = "https://api.track.toggl.com/api/v9"

// CreatedWith identifies this tool on created time entries.
const CreatedWith = "ttr"

var (
	// ErrMissingCredentials is returned when no API token is configured.
	ErrMissingCredentials = errors.New("toggl: no API token configured")
	// ErrUnauthorized is returned when Toggl rejects the API token.
	ErrUnauthorized = errors.New("toggl: authentication failed, check your API token")
)

// Options configures a Client.
type Options struct {
	APIToken string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL    string
	HTTPClient *http.Client
	// Limiter throttles requests. Defaults to one request per second, the
	// rate Toggl asks API clients to stay under.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Client is a Toggl Track API client.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client from opts.
func NewClient(opts Options) (*Client, error) {
	if opts.APIToken == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiToken:   opts.APIToken,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Me is the authenticated Toggl user.
type Me struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id"`
}

// DisplayName returns the full name, falling back to the email.
func (m Me) DisplayName() string {
	if m.Fullname != "" {
		return m.Fullname
	}
	if m.Email != "" {
		return m.Email
	}
	return "Unknown"
}

// TimeEntry is a Toggl time entry. A negative Duration marks a running entry.
type TimeEntry struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	ProjectID   *int64     `json:"project_id"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
	Tags        []string   `json:"tags"`
}

// NewTimeEntry is the request body for creating a time entry.
type NewTimeEntry struct {
	CreatedWith string    `json:"created_with"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	Duration    int64     `json:"duration"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	WorkspaceID int64     `json:"workspace_id"`
}

// Project is a Toggl project.
type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Color  string `json:"color"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.apiToken, "api_token")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("toggl request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("toggl API request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("toggl API error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding toggl response: %w", err)
	}
	return nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (Me, error) {
	var m Me
	err := c.do(ctx, http.MethodGet, "/me", nil, nil, &m)
	return m, err
}

// TimeEntries returns the user's entries starting in [from, to].
func (c *Client) TimeEntries(ctx context.Context, from, to time.Time) ([]TimeEntry, error) {
	query := url.Values{
		"start_date": {from.UTC().Format(time.RFC3339)},
		"end_date":   {to.UTC().Format(time.RFC3339)},
	}
	var entries []TimeEntry
	if err := c.do(ctx, http.MethodGet, "/me/time_entries", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Projects lists the projects of a workspace.
func (c *Client) Projects(ctx context.Context, workspaceID int64) ([]Project, error) {
	var projects []Project
	path := "/workspaces/" + strconv.FormatInt(workspaceID, 10) + "/projects"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateTimeEntry adds a stopped entry to a workspace.
func (c *Client) CreateTimeEntry(ctx context.Context, entry NewTimeEntry) (TimeEntry, error) {
	if entry.CreatedWith == "" {
		entry.CreatedWith = CreatedWith
	}
	var created TimeEntry
	path := "/workspaces/" + strconv.FormatInt(entry.WorkspaceID, 10) + "/time_entries"
	err := c.do(ctx, http.MethodPost, path, nil, entry, &created)
	return created, err
}
