// Package spotify implements the music.Catalog port against the Spotify
// Web API. App-level endpoints (search, recommendations) authenticate with
// the client-credentials flow; user-level endpoints (top items, playlist
// creation) require a user-authorized token and degrade gracefully without
// one.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/melodia/melodia/internal/music"
)

// Client talks to the Spotify Web API.
type Client struct {
	appClient  *http.Client // client-credentials token
	userClient *http.Client // user token, nil when not authorized
	baseURL    string
	market     string

	maxRetries  int
	baseBackoff time.Duration
}

// compile-time interface assertion
var _ music.Catalog = (*Client)(nil)

// New constructs a Client from the config. The returned client refreshes its
// app token automatically; ctx bounds the token refresh requests for the
// client's whole lifetime.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := &http.Client{Timeout: cfg.HTTPTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	var userClient *http.Client
	if cfg.UserToken != "" {
		userClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.UserToken}))
	}

	return &Client{
		appClient:   creds.Client(ctx),
		userClient:  userClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		market:      cfg.Market,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.BaseBackoff,
	}, nil
}

// NewWithClients constructs a Client over pre-built HTTP clients. Used by
// tests; userClient may be nil.
func NewWithClients(appClient, userClient *http.Client, baseURL string) *Client {
	if appClient == nil {
		appClient = http.DefaultClient
	}
	return &Client{
		appClient:  appClient,
		userClient: userClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     defaultMarket,
	}
}

// HasUserAuth reports whether user-level endpoints are available.
func (c *Client) HasUserAuth() bool {
	return c.userClient != nil
}

// getJSON performs a GET with retry and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: %w", err)
	}

	resp, err := c.doRequestWithRetry(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify adapter: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: decode response: %w", err)
	}
	return nil
}

// postJSON performs a POST with retry; out may be nil when the response body
// is irrelevant.
func (c *Client) postJSON(ctx context.Context, client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("spotify adapter: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("spotify adapter: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doRequestWithRetry(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("spotify adapter: status %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: decode response: %w", err)
	}
	return nil
}
