package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreActivateClearsAndTags(t *testing.T) {
	s := NewStore()
	_, ok := s.Begin()
	require.False(t, ok)

	tagA := s.Activate("a")
	require.True(t, s.Apply(tagA, []Message{{ID: "1"}}))
	require.Len(t, s.Snapshot(), 1)

	tagB := s.Activate("b")
	require.Empty(t, s.Snapshot())
	require.NotEqual(t, tagA.Generation, tagB.Generation)
	require.False(t, s.Current(tagA))
	require.False(t, s.Apply(tagA, []Message{{ID: "stale"}}))
	require.Empty(t, s.Snapshot())

	begun, ok := s.Begin()
	require.True(t, ok)
	require.Equal(t, tagB, begun)
}

func TestStoreReopenSameConversationInvalidatesOldTag(t *testing.T) {
	s := NewStore()
	first := s.Activate("a")
	s.Clear()
	second := s.Activate("a")

	require.False(t, s.Apply(first, []Message{{ID: "old"}}))
	require.True(t, s.Apply(second, []Message{{ID: "new"}}))
	require.Equal(t, MessageID("new"), s.Snapshot()[0].ID)
	require.Equal(t, uint64(1), s.Applied())
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	tag := s.Activate("a")
	input := []Message{{ID: "1", Text: "one"}}
	require.True(t, s.Apply(tag, input))

	input[0].Text = "mutated"
	snap := s.Snapshot()
	require.Equal(t, "one", snap[0].Text)
	snap[0].Text = "mutated"
	require.Equal(t, "one", s.Snapshot()[0].Text)
}

func TestStoreApplyEmptyYieldsEmptyCollection(t *testing.T) {
	s := NewStore()
	tag := s.Activate("a")
	require.True(t, s.Apply(tag, nil))
	require.NotNil(t, s.Snapshot())
	require.Empty(t, s.Snapshot())
}

func TestStoreClearDropsConversation(t *testing.T) {
	s := NewStore()
	tag := s.Activate("a")
	s.Clear()
	require.Empty(t, s.ConversationID())
	require.False(t, s.Current(tag))
	_, ok := s.Begin()
	require.False(t, ok)
}
