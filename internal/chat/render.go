package chat

import (
	"fmt"
	"time"
)

// EmptyPlaceholder is shown instead of an empty message list.
const EmptyPlaceholder = "No messages yet. Say hello to start the conversation!"

// View is the presentation-neutral projection of a conversation.
// Sender and Text are raw; each surface escapes them for its medium.
type View struct {
	Title       string
	Empty       bool
	Placeholder string
	Items       []ViewItem
}

// ViewItem is one rendered message.
type ViewItem struct {
	ID        string
	Self      bool
	Sender    string
	Text      string
	TimeLabel string
	SentAt    time.Time
}

// Project builds the view of msgs as seen by viewer at now.
func Project(msgs []Message, viewer Viewer, title string, now time.Time) View {
	view := View{Title: title}
	if len(msgs) == 0 {
		view.Empty = true
		view.Placeholder = EmptyPlaceholder
		return view
	}

	view.Items = make([]ViewItem, 0, len(msgs))
	for _, msg := range msgs {
		sender := msg.SenderName
		if sender == "" {
			sender = msg.SenderID
		}
		view.Items = append(view.Items, ViewItem{
			ID:        string(msg.ID),
			Self:      msg.IsFrom(viewer),
			Sender:    sender,
			Text:      msg.Text,
			TimeLabel: RelativeTime(msg.SentAt.Time, now),
			SentAt:    msg.SentAt.Time,
		})
	}
	return view
}

// RelativeTime labels sentAt relative to now. Timestamps slightly in the
// future (clock skew) read as "Just now".
func RelativeTime(sentAt, now time.Time) string {
	if sentAt.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	delta := now.Sub(sentAt)
	switch {
	case delta < time.Minute:
		return "Just now"
	case delta < time.Hour:
		return fmt.Sprintf("%dm ago", int(delta/time.Minute))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(delta/time.Hour))
	default:
		return sentAt.In(now.Location()).Format("Jan 2, 2006")
	}
}
