// Package sheets provides rate-limited clients for the Google Sheets, Docs,
// and Drive APIs, authenticated as a service account.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// SheetsBaseURL is the Google Sheets API base URL.
	SheetsBaseURL = "https://sheets.googleapis.com/v4"
	// DocsBaseURL is the Google Docs API base URL.
	DocsBaseURL = "https://docs.googleapis.com/v1"
	// DriveBaseURL is the Google Drive API base URL.
	DriveBaseURL = "https://www.googleapis.com/drive/v3"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// requestsPerSecond keeps well under the Sheets per-minute write quota.
	requestsPerSecond = 1.0
	requestBurst      = 5
)

// API errors.
var (
	ErrNotFound     = errors.New("google API: resource not found")
	ErrRateLimited  = errors.New("google API: rate limit exceeded")
	ErrUnauthorized = errors.New("google API: authentication failed")
	ErrAPIError     = errors.New("google API error")
)

// Client is a rate-limited client for the Google Sheets/Docs/Drive APIs.
type Client struct {
	tokens     tokenProvider
	httpClient *http.Client
	limiter    *rate.Limiter

	sheetsURL string
	docsURL   string
	driveURL  string
}

// tokenProvider abstracts TokenSource so tests can inject a static token.
type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs overrides the API base URLs (for testing).
func WithBaseURLs(sheetsURL, docsURL, driveURL string) ClientOption {
	return func(c *Client) {
		c.sheetsURL = sheetsURL
		c.docsURL = docsURL
		c.driveURL = driveURL
	}
}

// WithTokenProvider overrides the token source (for testing).
func WithTokenProvider(tp tokenProvider) ClientOption {
	return func(c *Client) { c.tokens = tp }
}

// NewClient creates a Google API client backed by the given token source.
func NewClient(tokens *TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		sheetsURL:  SheetsBaseURL,
		docsURL:    DocsBaseURL,
		driveURL:   DriveBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendRow appends one row of values to the first sheet of a spreadsheet.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID string, row []string) error {
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	body := map[string]any{"values": [][]any{values}}

	path := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=RAW",
		c.sheetsURL, spreadsheetID, "Sheet1!A1")
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// CreateSpreadsheet creates a spreadsheet with the given title and a header
// row, returning its ID.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, header []string) (string, error) {
	body := map[string]any{
		"properties": map[string]any{"title": title},
	}

	var created struct {
		SpreadsheetID string `json:"spreadsheetId"`
	}
	if err := c.do(ctx, http.MethodPost, c.sheetsURL+"/spreadsheets", body, &created); err != nil {
		return "", err
	}
	if created.SpreadsheetID == "" {
		return "", fmt.Errorf("%w: spreadsheets.create returned no ID", ErrAPIError)
	}

	if len(header) > 0 {
		if err := c.AppendRow(ctx, created.SpreadsheetID, header); err != nil {
			return "", fmt.Errorf("writing header row: %w", err)
		}
	}

	return created.SpreadsheetID, nil
}

// do issues one authenticated, rate-limited JSON request. A nil out discards
// the response body.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("getting access token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling google API: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Success
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
