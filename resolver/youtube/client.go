// Package youtube implements the generic video-search fallback.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"clipfinder/internal/models"
	"clipfinder/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client searches YouTube for a highlight clip when the primary video asset
// lookup comes up empty. The underlying service is created lazily so that a
// deployment without YouTube credentials still starts; its searches just
// fail, and the resolver degrades accordingly.
type Client struct {
	cfg *config.YouTubeConfig

	mu      sync.Mutex
	service *youtube.Service
}

func NewClient(cfg *config.YouTubeConfig) *Client {
	return &Client{cfg: cfg}
}

// Search runs a single-result relevance-ranked video search.
func (c *Client) Search(ctx context.Context, query string) (models.VideoResult, error) {
	service, err := c.getService(ctx)
	if err != nil {
		return models.VideoResult{}, err
	}

	resp, err := service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(1).
		Order("relevance").
		Context(ctx).
		Do()
	if err != nil {
		return models.VideoResult{}, fmt.Errorf("search failed: %w", err)
	}

	if len(resp.Items) == 0 {
		return models.VideoResult{}, fmt.Errorf("no results for %q", query)
	}

	item := resp.Items[0]
	result := models.VideoResult{
		URL:    fmt.Sprintf("https://youtu.be/%s", item.Id.VideoId),
		Source: models.SourceYouTube,
	}
	if item.Snippet != nil {
		result.Title = item.Snippet.Title
		result.PublishedAt = item.Snippet.PublishedAt
		if item.Snippet.Thumbnails != nil {
			if item.Snippet.Thumbnails.High != nil {
				result.ThumbnailURL = item.Snippet.Thumbnails.High.Url
			} else if item.Snippet.Thumbnails.Default != nil {
				result.ThumbnailURL = item.Snippet.Thumbnails.Default.Url
			}
		}
	}
	return result, nil
}

func (c *Client) getService(ctx context.Context) (*youtube.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service != nil {
		return c.service, nil
	}

	var opts []option.ClientOption
	switch {
	case c.cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(c.cfg.APIKey))
	case c.cfg.ClientID != "" && c.cfg.ClientSecret != "":
		httpClient, err := c.oauthClient(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	default:
		return nil, fmt.Errorf("fallback search is not configured")
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	c.service = service
	return service, nil
}

// oauthClient builds an authenticated HTTP client for deployments that use a
// Google OAuth client instead of an API key. The token lives in a file and
// refreshed tokens are written back so they survive restarts.
func (c *Client) oauthClient(ctx context.Context) (*http.Client, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
		Endpoint:     google.Endpoint,
	}

	token, err := getToken(oauthConfig, c.cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	source := &tokenSaver{
		config:    oauthConfig,
		token:     token,
		tokenFile: c.cfg.TokenFile,
	}
	return oauth2.NewClient(ctx, source), nil
}

// tokenSaver wraps an oauth2.TokenSource to persist refreshed tokens.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		log.Println("YouTube token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			log.Printf("Warning: Failed to save refreshed token: %v", err)
		}
	}
	return newToken, nil
}

// getToken loads the token from disk, falling back to the device
// authorization flow for first-time setup. An expired token with a refresh
// token is still usable; the tokenSaver refreshes it.
func getToken(config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	if tok, err := tokenFromFile(tokenFile); err == nil {
		if tok.RefreshToken != "" || tok.Valid() {
			return tok, nil
		}
	}

	log.Println("No usable YouTube token on disk, starting device authorization...")
	tok, err := getTokenWithDeviceFlow(config)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w (ensure the OAuth client is a 'TVs and Limited Input devices' client with the YouTube Data API v3 enabled)", err)
	}

	if err := saveToken(tokenFile, tok); err != nil {
		log.Printf("Warning: Failed to save token: %v", err)
	}
	return tok, nil
}

func getTokenWithDeviceFlow(config *oauth2.Config) (*oauth2.Token, error) {
	ctx := context.Background()

	resp, err := config.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	fmt.Printf("\nYouTube authorization required:\n")
	fmt.Printf("  1. Visit %s\n", resp.VerificationURI)
	fmt.Printf("  2. Enter code: %s\n", resp.UserCode)
	fmt.Printf("Waiting for authorization... (Ctrl+C to cancel)\n\n")

	tok, err := config.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
