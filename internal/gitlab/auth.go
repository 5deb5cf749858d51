package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// ErrMissingCredentials is returned when neither a token nor an OAuth client
// ID is configured.
var ErrMissingCredentials = errors.New("gitlab: no token or OAuth client ID configured")

var requiredScopes = []string{"read_api", "read_user"}

// AuthOptions selects how requests are authenticated.
type AuthOptions struct {
	// BaseURL is the GitLab instance, e.g. "https://gitlab.com".
	BaseURL string
	// Token is a personal access token; it takes precedence over ClientID.
	Token string
	// ClientID is an OAuth application ID used for the device flow.
	ClientID string
	// TokenFile persists device-flow tokens between runs.
	TokenFile string
	// Prompt receives the sign-in instructions. Defaults to os.Stdout.
	Prompt io.Writer
}

// TokenFilePath returns the path of the stored device-flow token in base.
func TokenFilePath(base string) string {
	return filepath.Join(base, "auth", "gitlab_tokens.json")
}

// oauth2Config returns the oauth2.Config for a GitLab instance.
func oauth2Config(baseURL, clientID string) *oauth2.Config {
	baseURL = strings.TrimRight(baseURL, "/")
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: baseURL + "/oauth/authorize_device",
			TokenURL:      baseURL + "/oauth/token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken loads a previously saved token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(s.path, tok)
	return tok, nil
}

// TokenSource returns the token source for API requests. A personal access
// token is used as a static bearer token. Otherwise a saved device-flow token
// is loaded and refreshed, and a new device flow is started when none is
// usable.
func TokenSource(ctx context.Context, opts AuthOptions) (oauth2.TokenSource, error) {
	if opts.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}), nil
	}
	if opts.ClientID == "" {
		return nil, ErrMissingCredentials
	}
	prompt := opts.Prompt
	if prompt == nil {
		prompt = os.Stdout
	}

	cfg := oauth2Config(opts.BaseURL, opts.ClientID)

	tok, err := loadToken(opts.TokenFile)
	if err != nil {
		// Corrupt token: warn and re-auth.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && (tok.Valid() || tok.RefreshToken != "") {
		// Refresh happens lazily inside the token source.
		return oauth2.ReuseTokenSource(tok, &savingTokenSource{ts: cfg.TokenSource(ctx, tok), path: opts.TokenFile}), nil
	}

	// Device code flow.
	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in to GitLab, open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := saveToken(opts.TokenFile, newTok); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save token: %v\n", err)
	}

	return oauth2.ReuseTokenSource(newTok, &savingTokenSource{ts: cfg.TokenSource(ctx, newTok), path: opts.TokenFile}), nil
}
