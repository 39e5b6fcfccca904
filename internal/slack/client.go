// Package slack provides a client for the Slack Web API and types for the
// Events API webhook payloads.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Slack Web API base URL.
const DefaultBaseURL = "https://slack.com/api"

// Errors.
var (
	ErrMissingToken = errors.New("SLACK_BOT_TOKEN environment variable not set")
	ErrNotInChannel = errors.New("bot is not a member of this channel; invite it with /invite @switchlog")
	ErrAPIError     = errors.New("slack API error")
)

// Client provides access to the Slack Web API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	cachePath  string
	userCache  map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithToken overrides the token read from the environment.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserCachePath sets the on-disk location of the user-name cache.
// Without it the cache is memory-only.
func WithUserCachePath(path string) Option {
	return func(c *Client) { c.cachePath = path }
}

// NewClient creates a Slack client. The bot token is read from
// SLACK_BOT_TOKEN unless WithToken is given.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		token:      os.Getenv("SLACK_BOT_TOKEN"),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userCache:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.token == "" {
		return nil, ErrMissingToken
	}

	return c, nil
}

// Message is one channel message relevant to logging.
type Message struct {
	Timestamp string    `json:"ts"`
	Time      time.Time `json:"-"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Date      string    `json:"date"`
	Text      string    `json:"text"`
}

// apiResponse is the generic Slack API response wrapper.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

type historyResponse struct {
	apiResponse
	Messages []rawMessage     `json:"messages"`
	HasMore  bool             `json:"has_more"`
	Metadata responseMetadata `json:"response_metadata"`
}

type rawMessage struct {
	Type    string `json:"type"`
	User    string `json:"user"`
	BotID   string `json:"bot_id,omitempty"`
	Text    string `json:"text"`
	TS      string `json:"ts"`
	SubType string `json:"subtype,omitempty"`
}

// History fetches user messages from a channel between oldest and latest
// (either may be zero), following cursor pagination up to limit messages.
// Bot messages and subtyped messages (joins, edits) are skipped.
func (c *Client) History(ctx context.Context, channelID string, oldest, latest time.Time, limit int) ([]Message, error) {
	if err := c.loadUserCache(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load user cache: %v\n", err)
	}

	var messages []Message
	cursor := ""
	for {
		q := url.Values{}
		q.Set("channel", channelID)
		// Slack recommends 200 max per page
		q.Set("limit", "200")
		if !oldest.IsZero() {
			q.Set("oldest", strconv.FormatInt(oldest.Unix(), 10))
		}
		if !latest.IsZero() {
			q.Set("latest", strconv.FormatInt(latest.Unix(), 10))
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var result historyResponse
		if err := c.get(ctx, "conversations.history", q, &result); err != nil {
			return nil, err
		}
		if !result.OK {
			if result.Error == "channel_not_found" || result.Error == "not_in_channel" {
				return nil, ErrNotInChannel
			}
			return nil, fmt.Errorf("%w: %s", ErrAPIError, result.Error)
		}

		for _, m := range result.Messages {
			if m.SubType != "" || m.BotID != "" || m.User == "" {
				continue
			}
			messages = append(messages, c.toMessage(m))
			if limit > 0 && len(messages) >= limit {
				return messages, nil
			}
		}

		if !result.HasMore || result.Metadata.NextCursor == "" {
			break
		}
		cursor = result.Metadata.NextCursor
	}

	return messages, nil
}

func (c *Client) toMessage(m rawMessage) Message {
	ts, _ := ParseTimestamp(m.TS)

	userName := c.userCache[m.User]
	if userName == "" {
		if fetched := c.lookupUser(m.User); fetched != "" {
			userName = fetched
		} else {
			userName = m.User
		}
	}

	return Message{
		Timestamp: m.TS,
		Time:      ts,
		UserID:    m.User,
		UserName:  userName,
		Date:      ts.Format("2006-01-02"),
		Text:      m.Text,
	}
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// PostMessage posts a message to a channel via chat.postMessage.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	var result apiResponse
	if err := c.post(ctx, "chat.postMessage", postMessageRequest{Channel: channelID, Text: text}, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%w: %s", ErrAPIError, result.Error)
	}
	return nil
}

func (c *Client) get(ctx context.Context, method string, q url.Values, out any) error {
	u := c.baseURL + "/" + method
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", method, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", method, err)
	}
	return nil
}

// ParseTimestamp parses a Slack timestamp string (e.g. "1737990123.000100").
func ParseTimestamp(ts string) (time.Time, error) {
	sec, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", ts)
	}
	var micro int64
	if frac != "" {
		micro, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", ts)
		}
	}
	return time.Unix(s, micro*1000), nil
}

// --- user-name cache ---

type usersResponse struct {
	apiResponse
	Members  []user           `json:"members"`
	Metadata responseMetadata `json:"response_metadata"`
}

type userInfoResponse struct {
	apiResponse
	User user `json:"user"`
}

type user struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Profile userProfile `json:"profile"`
}

type userProfile struct {
	DisplayName string `json:"display_name"`
	RealName    string `json:"real_name"`
}

func (u user) displayName() string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	if u.Profile.RealName != "" {
		return u.Profile.RealName
	}
	return u.Name
}

// FetchUsers fetches all workspace users and updates the name cache.
// Handles pagination.
func (c *Client) FetchUsers(ctx context.Context) (map[string]string, error) {
	if err := c.loadUserCache(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load user cache: %v\n", err)
	}

	cursor := ""
	for {
		q := url.Values{}
		q.Set("limit", "200")
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var result usersResponse
		if err := c.get(ctx, "users.list", q, &result); err != nil {
			return nil, err
		}
		if !result.OK {
			return nil, fmt.Errorf("%w: %s", ErrAPIError, result.Error)
		}

		for _, u := range result.Members {
			c.userCache[u.ID] = u.displayName()
		}

		if result.Metadata.NextCursor == "" {
			break
		}
		cursor = result.Metadata.NextCursor
	}

	if err := c.saveUserCache(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save user cache: %v\n", err)
	}

	return c.userCache, nil
}

// lookupUser fetches a single user via users.info and updates the cache.
// Returns empty string on any failure.
func (c *Client) lookupUser(userID string) string {
	q := url.Values{}
	q.Set("user", userID)

	var result userInfoResponse
	if err := c.get(context.Background(), "users.info", q, &result); err != nil {
		return ""
	}
	if !result.OK {
		return ""
	}

	name := result.User.displayName()
	c.userCache[userID] = name
	_ = c.saveUserCache()
	return name
}

func (c *Client) loadUserCache() error {
	if c.cachePath == "" {
		return nil
	}
	data, err := os.ReadFile(c.cachePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading user cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.userCache); err != nil {
		return fmt.Errorf("parsing user cache: %w", err)
	}
	return nil
}

func (c *Client) saveUserCache() error {
	if c.cachePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(c.userCache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling user cache: %w", err)
	}
	if err := os.WriteFile(c.cachePath, data, 0644); err != nil {
		return fmt.Errorf("writing user cache: %w", err)
	}
	return nil
}
