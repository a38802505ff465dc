package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 10, 11, 58, 7, 0, time.UTC)
	for _, value := range []string{
		"2024-03-10T11:58:07Z",
		"2024-03-10T13:58:07+02:00",
		"2024-03-10 11:58:07",
		"2024-03-10T11:58:07",
	} {
		got, err := ParseTimestamp(value)
		require.NoError(t, err, value)
		require.True(t, want.Equal(got), value)
	}

	got, err := ParseTimestamp("")
	require.NoError(t, err)
	require.True(t, got.IsZero())

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestMessageDecodeFlexibleFields(t *testing.T) {
	var msgs []Message
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 12, "sender_id": 3, "message_text": "a", "sent_at": 1710071887},
		{"id": "x-1", "sender_id": "u-9", "sender_name": "Una", "message_text": "b", "sent_at": null}
	]`), &msgs))

	require.Equal(t, MessageID("12"), msgs[0].ID)
	require.Equal(t, "3", msgs[0].SenderID)
	require.Equal(t, time.Unix(1710071887, 0).UTC(), msgs[0].SentAt.Time)
	require.Equal(t, MessageID("x-1"), msgs[1].ID)
	require.True(t, msgs[1].SentAt.IsZero())

	require.True(t, msgs[0].IsFrom(Viewer{ID: "3"}))
	require.False(t, msgs[0].IsFrom(Viewer{}))
}

func TestTimestampMarshal(t *testing.T) {
	data, err := json.Marshal(Timestamp{time.Date(2024, 3, 10, 11, 58, 7, 0, time.UTC)})
	require.NoError(t, err)
	require.JSONEq(t, `"2024-03-10T11:58:07Z"`, string(data))

	data, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	require.Equal(t, "null", string(data))
}
