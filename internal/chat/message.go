package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Viewer is the locally authenticated participant.
type Viewer struct {
	ID   string
	Name string
}

// Message is one server-assigned entry of a conversation. Text is untrusted
// user input and must be escaped by every presentation layer.
type Message struct {
	ID         MessageID `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"message_text"`
	SentAt     Timestamp `json:"sent_at"`
}

// IsFrom reports whether the message was sent by the viewer.
func (m Message) IsFrom(viewer Viewer) bool {
	id := strings.TrimSpace(viewer.ID)
	return id != "" && strings.TrimSpace(m.SenderID) == id
}

// MessageID is a server-assigned identifier. The API emits either numbers or strings.
type MessageID string

func (id *MessageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MessageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("message id: %w", err)
	}
	*id = MessageID(n.String())
	return nil
}

// senderID fields are sometimes numeric as well.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var id MessageID
	if err := id.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = flexString(id)
	return nil
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         MessageID  `json:"id"`
		SenderID   flexString `json:"sender_id"`
		SenderName string     `json:"sender_name"`
		Text       string     `json:"message_text"`
		SentAt     Timestamp  `json:"sent_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{
		ID:         raw.ID,
		SenderID:   string(raw.SenderID),
		SenderName: raw.SenderName,
		Text:       raw.Text,
		SentAt:     raw.SentAt,
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

// Timestamp accepts the datetime shapes produced by common SQL backends.
// Values without a zone are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		secs, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("sent_at: %w", err)
		}
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ParseTimestamp parses a sent_at value.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("sent_at: unsupported time %q", value)
}

func cloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}
	out := make([]Message, len(in))
	copy(out, in)
	return out
}
