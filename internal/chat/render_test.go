package chat

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		sentAt time.Time
		want   string
	}{
		{name: "thirty seconds", sentAt: now.Add(-30 * time.Second), want: "Just now"},
		{name: "future skew", sentAt: now.Add(2 * time.Minute), want: "Just now"},
		{name: "exactly one minute", sentAt: now.Add(-time.Minute), want: "1m ago"},
		{name: "five minutes", sentAt: now.Add(-5 * time.Minute), want: "5m ago"},
		{name: "fifty nine minutes", sentAt: now.Add(-59*time.Minute - 59*time.Second), want: "59m ago"},
		{name: "ninety minutes floors", sentAt: now.Add(-90 * time.Minute), want: "1h ago"},
		{name: "twenty three hours", sentAt: now.Add(-23*time.Hour - 59*time.Minute), want: "23h ago"},
		{name: "two days", sentAt: now.Add(-48 * time.Hour), want: "Mar 8, 2024"},
		{name: "zero", sentAt: time.Time{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RelativeTime(tt.sentAt, now))
		})
	}
}

func TestRelativeTimeUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	sentAt := time.Date(2024, 3, 7, 20, 0, 0, 0, time.UTC)
	require.Equal(t, "Mar 8, 2024", RelativeTime(sentAt, now))
}

func TestProjectEmpty(t *testing.T) {
	view := Project(nil, testViewer, "Offer", time.Now())
	require.True(t, view.Empty)
	require.Equal(t, EmptyPlaceholder, view.Placeholder)
	require.Empty(t, view.Items)
	require.Equal(t, "Offer", view.Title)
}

func TestProjectClassifiesSender(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "1", SenderID: "viewer", SenderName: "Vera", Text: "mine", SentAt: Timestamp{now.Add(-5 * time.Minute)}},
		{ID: "2", SenderID: "42", Text: "theirs", SentAt: Timestamp{now}},
	}
	view := Project(msgs, testViewer, "Offer", now)
	require.False(t, view.Empty)
	require.Len(t, view.Items, 2)

	require.True(t, view.Items[0].Self)
	require.Equal(t, "Vera", view.Items[0].Sender)
	require.Equal(t, "5m ago", view.Items[0].TimeLabel)

	require.False(t, view.Items[1].Self)
	require.Equal(t, "42", view.Items[1].Sender)
	require.Equal(t, "Just now", view.Items[1].TimeLabel)
}

func TestProjectWithoutViewerIDClassifiesNothingAsSelf(t *testing.T) {
	view := Project([]Message{{ID: "1", SenderID: ""}}, Viewer{}, "", time.Now())
	require.False(t, view.Items[0].Self)
}

func TestWriteHTMLEscapesUntrustedContent(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	msgs := []Message{{
		ID:         "1",
		SenderID:   "other",
		SenderName: `<img src=x onerror="alert(1)">`,
		Text:       "<script>alert(1)</script>",
		SentAt:     Timestamp{now},
	}}
	view := Project(msgs, testViewer, "<b>Offer</b>", now)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "", view))
	out := buf.String()

	require.NotContains(t, out, "<script>")
	require.NotContains(t, out, "<img")
	require.NotContains(t, out, "<b>")
	require.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	require.Contains(t, out, `id="offer-chat"`)
	require.Contains(t, out, "offer-chat__message--other")
	require.Contains(t, out, "Just now")
}

func TestWriteHTMLEmptyPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "box", Project(nil, testViewer, "T", time.Now())))
	out := buf.String()
	require.Contains(t, out, `id="box"`)
	require.Contains(t, out, "offer-chat__empty")
	require.Contains(t, out, "No messages yet.")
	require.False(t, strings.Contains(out, "<ol"))
}
