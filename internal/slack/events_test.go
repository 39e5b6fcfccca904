package slack

import "testing"

func TestParseEventPayloadChallenge(t *testing.T) {
	body := []byte(`{"type": "url_verification", "challenge": "abc123", "token": "tok"}`)
	p, err := ParseEventPayload(body)
	if err != nil {
		t.Fatalf("ParseEventPayload() unexpected error: %v", err)
	}
	if p.Type != PayloadURLVerification || p.Challenge != "abc123" {
		t.Errorf("payload = %+v", p)
	}
	if _, ok := p.MessageEvent(); ok {
		t.Error("MessageEvent() = ok for a url_verification payload")
	}
}

func TestMessageEvent(t *testing.T) {
	body := []byte(`{
		"type": "event_callback",
		"event_id": "Ev12345",
		"event": {
			"type": "message",
			"channel": "D08SS90DC3X",
			"user": "U1",
			"text": "ts: wrote tests (coding)",
			"ts": "1756500000.000100"
		}
	}`)

	p, err := ParseEventPayload(body)
	if err != nil {
		t.Fatalf("ParseEventPayload() unexpected error: %v", err)
	}

	ev, ok := p.MessageEvent()
	if !ok {
		t.Fatal("MessageEvent() not ok")
	}
	if ev.Channel != "D08SS90DC3X" || ev.Text != "ts: wrote tests (coding)" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.FromUser() {
		t.Error("FromUser() = false for a plain user message")
	}
}

func TestFromUser(t *testing.T) {
	tests := []struct {
		name string
		ev   MessageEvent
		want bool
	}{
		{"user message", MessageEvent{Type: "message", User: "U1"}, true},
		{"bot message", MessageEvent{Type: "message", User: "U1", BotID: "B1"}, false},
		{"subtyped message", MessageEvent{Type: "message", User: "U1", SubType: "message_changed"}, false},
		{"no user", MessageEvent{Type: "message"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.FromUser(); got != tt.want {
				t.Errorf("FromUser() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageEventNonMessage(t *testing.T) {
	body := []byte(`{"type": "event_callback", "event": {"type": "reaction_added"}}`)
	p, err := ParseEventPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.MessageEvent(); ok {
		t.Error("MessageEvent() = ok for a reaction_added event")
	}
}
