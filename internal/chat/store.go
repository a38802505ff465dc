package chat

import "sync"

// FetchTag identifies the conversation session a fetch was issued for.
type FetchTag struct {
	ConversationID string
	Generation     uint64
}

// Store holds the latest message collection of the active conversation.
// The collection is only ever replaced wholesale.
type Store struct {
	mu             sync.RWMutex
	conversationID string
	generation     uint64
	messages       []Message
	applied        uint64
}

// NewStore returns an empty store with no active conversation.
func NewStore() *Store {
	return &Store{}
}

// Activate binds the store to a conversation and empties the collection.
// Fetches tagged before this call become stale.
func (s *Store) Activate(conversationID string) FetchTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.conversationID = conversationID
	s.messages = nil
	return FetchTag{ConversationID: conversationID, Generation: s.generation}
}

// Clear drops the active conversation and its messages.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.conversationID = ""
	s.messages = nil
}

// Begin tags a fetch for the active conversation. ok is false when nothing is active.
func (s *Store) Begin() (FetchTag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conversationID == "" {
		return FetchTag{}, false
	}
	return FetchTag{ConversationID: s.conversationID, Generation: s.generation}, true
}

// Current reports whether tag still belongs to the active conversation.
func (s *Store) Current(tag FetchTag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isCurrentLocked(tag)
}

// Apply replaces the collection with msgs if tag is current. Results are
// applied in completion order, so the last completed fetch wins.
func (s *Store) Apply(tag FetchTag, msgs []Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrentLocked(tag) {
		return false
	}
	next := cloneMessages(msgs)
	if next == nil {
		next = []Message{}
	}
	s.messages = next
	s.applied++
	return true
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.messages)
}

// ConversationID returns the active conversation, or "".
func (s *Store) ConversationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

// Applied counts successful replacements since creation.
func (s *Store) Applied() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

func (s *Store) isCurrentLocked(tag FetchTag) bool {
	return s.conversationID != "" &&
		tag.Generation == s.generation &&
		tag.ConversationID == s.conversationID
}
