package gitlab

import (
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
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrUnauthorized is returned when GitLab rejects the credentials.
var ErrUnauthorized = errors.New("gitlab: authentication failed, check your token")

// Client is an authenticated GitLab REST API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	projects map[int64]string
}

// NewClient creates a client for the instance at baseURL.
func NewClient(ctx context.Context, baseURL string, ts oauth2.TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v4",
		httpClient: oauth2.NewClient(ctx, ts),
		logger:     logger,
		projects:   map[int64]string{},
	}
}

// User is the authenticated GitLab user.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Event is a GitLab user contribution event.
type Event struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	ActionName  string    `json:"action_name"`
	TargetType  string    `json:"target_type"`
	TargetTitle string    `json:"target_title"`
	CreatedAt   time.Time `json:"created_at"`
	PushData    *PushData `json:"push_data"`
}

// PushData is present on push events.
type PushData struct {
	CommitCount int    `json:"commit_count"`
	Action      string `json:"action"`
	RefType     string `json:"ref_type"`
	Ref         string `json:"ref"`
	CommitTitle string `json:"commit_title"`
}

// get performs a GET and decodes the JSON body into v. It returns the
// response headers for pagination.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("gitlab request", "path", path, "query", query.Encode())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gitlab API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("gitlab API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("decoding gitlab response: %w", err)
	}
	return resp.Header, nil
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	if _, err := c.get(ctx, "/user", nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Events returns the current user's events created in [from, to]. The
// endpoint's after/before bounds are exclusive dates, so the window is
// widened by a day on each side and trimmed afterwards.
func (c *Client) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := url.Values{
		"after":    {from.AddDate(0, 0, -1).Format("2006-01-02")},
		"before":   {to.AddDate(0, 0, 1).Format("2006-01-02")},
		"per_page": {"100"},
		"sort":     {"desc"},
	}

	var all []Event
	page := "1"
	for page != "" {
		query.Set("page", page)
		var batch []Event
		header, err := c.get(ctx, "/events", query, &batch)
		if err != nil {
			return nil, err
		}
		for _, e := range batch {
			if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
				continue
			}
			all = append(all, e)
		}
		page = header.Get("X-Next-Page")
	}
	c.logger.Debug("gitlab events fetched", "count", len(all))
	return all, nil
}

// ProjectName resolves a project id to its name. Results are cached.
func (c *Client) ProjectName(ctx context.Context, id int64) (string, error) {
	c.mu.Lock()
	name, ok := c.projects[id]
	c.mu.Unlock()
	if ok {
		return name, nil
	}

	var p struct {
		Name string `json:"name"`
	}
	if _, err := c.get(ctx, "/projects/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.projects[id] = p.Name
	c.mu.Unlock()
	return p.Name, nil
}
