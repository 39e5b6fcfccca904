package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func TestNewClientRequiresToken(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "")
	if _, err := NewClient(); err != ErrMissingToken {
		t.Errorf("NewClient() error = %v, want ErrMissingToken", err)
	}
}

func TestHistoryPagination(t *testing.T) {
	pages := []string{
		`{"ok": true, "has_more": true,
		  "messages": [
		    {"type": "message", "user": "U1", "text": "ts: coded (coding)", "ts": "1756500000.000100"},
		    {"type": "message", "user": "U1", "text": "joined", "ts": "1756500100.000100", "subtype": "channel_join"},
		    {"type": "message", "bot_id": "B1", "text": "bot noise", "ts": "1756500200.000100"}
		  ],
		  "response_metadata": {"next_cursor": "page2"}}`,
		`{"ok": true, "has_more": false,
		  "messages": [
		    {"type": "message", "user": "U2", "text": "ts: reviewed (review)", "ts": "1756503600.000100"}
		  ]}`,
	}

	var gotCursors []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations.history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer xoxb-test" {
			t.Errorf("Authorization = %q", auth)
		}
		cursor := r.URL.Query().Get("cursor")
		gotCursors = append(gotCursors, cursor)
		page := 0
		if cursor == "page2" {
			page = 1
		}
		fmt.Fprint(w, pages[page])
	}))
	defer srv.Close()

	client, err := NewClient(WithToken("xoxb-test"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	messages, err := client.History(context.Background(), "D08SS90DC3X", time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2 (bot and subtype messages skipped)", len(messages))
	}
	if messages[0].Text != "ts: coded (coding)" {
		t.Errorf("messages[0].Text = %q", messages[0].Text)
	}
	if messages[0].Date == "" || messages[0].Time.IsZero() {
		t.Errorf("messages[0] missing parsed time: %+v", messages[0])
	}
	if len(gotCursors) != 2 || gotCursors[1] != "page2" {
		t.Errorf("cursors = %v, want [\"\" page2]", gotCursors)
	}
}

func TestHistoryNotInChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "not_in_channel"}`)
	}))
	defer srv.Close()

	client, err := NewClient(WithToken("xoxb-test"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.History(context.Background(), "C0123ABCDEF", time.Time{}, time.Time{}, 0); err != ErrNotInChannel {
		t.Errorf("History() error = %v, want ErrNotInChannel", err)
	}
}

func TestHistoryLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": true, "has_more": false, "messages": [
			{"type": "message", "user": "U1", "text": "a", "ts": "1756500000.000100"},
			{"type": "message", "user": "U1", "text": "b", "ts": "1756500060.000100"},
			{"type": "message", "user": "U1", "text": "c", "ts": "1756500120.000100"}
		]}`)
	}))
	defer srv.Close()

	client, err := NewClient(WithToken("xoxb-test"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	messages, err := client.History(context.Background(), "D08SS90DC3X", time.Time{}, time.Time{}, 2)
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("got %d messages, want limit of 2", len(messages))
	}
}

func TestPostMessage(t *testing.T) {
	var got postMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	client, err := NewClient(WithToken("xoxb-test"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if err := client.PostMessage(context.Background(), "D08SS90DC3X", "hello"); err != nil {
		t.Fatalf("PostMessage() unexpected error: %v", err)
	}
	if got.Channel != "D08SS90DC3X" || got.Text != "hello" {
		t.Errorf("posted %+v", got)
	}
}

func TestFetchUsersCachesToDisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users.list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"ok": true, "members": [
			{"id": "U1", "name": "jdoe", "profile": {"display_name": "jo", "real_name": "Jo Doe"}},
			{"id": "U2", "name": "fallback", "profile": {}}
		], "response_metadata": {"next_cursor": ""}}`)
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "cache", "slack_users.json")
	client, err := NewClient(WithToken("xoxb-test"), WithBaseURL(srv.URL), WithUserCachePath(cachePath))
	if err != nil {
		t.Fatal(err)
	}

	users, err := client.FetchUsers(context.Background())
	if err != nil {
		t.Fatalf("FetchUsers() unexpected error: %v", err)
	}
	if users["U1"] != "jo" {
		t.Errorf("users[U1] = %q, want display name %q", users["U1"], "jo")
	}
	if users["U2"] != "fallback" {
		t.Errorf("users[U2] = %q, want username fallback", users["U2"])
	}

	// A fresh client should pick the names up from disk without the API.
	fresh, err := NewClient(WithToken("xoxb-test"), WithBaseURL("http://127.0.0.1:0"), WithUserCachePath(cachePath))
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh.loadUserCache(); err != nil {
		t.Fatalf("loadUserCache() unexpected error: %v", err)
	}
	if fresh.userCache["U1"] != "jo" {
		t.Errorf("cached users[U1] = %q, want %q", fresh.userCache["U1"], "jo")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"1756500000.000100", time.Unix(1756500000, 100000), false},
		{"1756500000", time.Unix(1756500000, 0), false},
		{"", time.Time{}, true},
		{"abc.def", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
