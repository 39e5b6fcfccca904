package slack

import "encoding/json"

// Event payload types for the Events API.
const (
	PayloadURLVerification = "url_verification"
	PayloadEventCallback   = "event_callback"
	EventTypeMessage       = "message"
)

// EventPayload is the outer envelope delivered to the events endpoint.
type EventPayload struct {
	Type      string          `json:"type"`
	Token     string          `json:"token,omitempty"`
	Challenge string          `json:"challenge,omitempty"`
	TeamID    string          `json:"team_id,omitempty"`
	EventID   string          `json:"event_id,omitempty"`
	EventTime int64           `json:"event_time,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

// MessageEvent is a message event inside an event_callback envelope.
type MessageEvent struct {
	Type    string `json:"type"`
	SubType string `json:"subtype,omitempty"`
	Channel string `json:"channel"`
	User    string `json:"user"`
	BotID   string `json:"bot_id,omitempty"`
	Text    string `json:"text"`
	TS      string `json:"ts"`
}

// ParseEventPayload decodes the envelope of an events request.
func ParseEventPayload(body []byte) (*EventPayload, error) {
	var p EventPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MessageEvent decodes the inner event as a message event. Returns false if
// the payload carries no event or the event is not a message.
func (p *EventPayload) MessageEvent() (*MessageEvent, bool) {
	if p.Type != PayloadEventCallback || len(p.Event) == 0 {
		return nil, false
	}
	var ev MessageEvent
	if err := json.Unmarshal(p.Event, &ev); err != nil {
		return nil, false
	}
	if ev.Type != EventTypeMessage {
		return nil, false
	}
	return &ev, true
}

// FromUser reports whether the message was authored by a human user rather
// than a bot or a subtyped system message.
func (e *MessageEvent) FromUser() bool {
	return e.BotID == "" && e.SubType == "" && e.User != ""
}
