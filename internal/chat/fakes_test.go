package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type recordingSurface struct {
	mu              sync.Mutex
	title           string
	visible         bool
	views           []View
	scrolls         int
	composerEnabled bool
	composerHistory []bool
	draftClears     int
	focuses         int
	notices         []string
	notice          string
	dismissals      int
}

func (s *recordingSurface) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

func (s *recordingSurface) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

func (s *recordingSurface) RenderView(view View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, view)
}

func (s *recordingSurface) ScrollToLatest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrolls++
}

func (s *recordingSurface) SetComposerEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composerEnabled = enabled
	s.composerHistory = append(s.composerHistory, enabled)
}

func (s *recordingSurface) ClearDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftClears++
}

func (s *recordingSurface) FocusComposer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focuses++
}

func (s *recordingSurface) ShowNotice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = text
	s.notices = append(s.notices, text)
}

func (s *recordingSurface) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
	s.dismissals++
}

func (s *recordingSurface) lastView() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) == 0 {
		return View{}, false
	}
	return s.views[len(s.views)-1], true
}

func (s *recordingSurface) renderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *recordingSurface) currentNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *recordingSurface) noticeHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

func (s *recordingSurface) draftClearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftClears
}

func (s *recordingSurface) isVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *recordingSurface) composer() (bool, []bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composerEnabled, append([]bool(nil), s.composerHistory...)
}

func (s *recordingSurface) scrollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrolls
}

type sentMessage struct {
	conversationID string
	text           string
}

// fakeTransport serves per-conversation message lists. Fetches can be
// blocked per conversation to simulate slow responses.
type fakeTransport struct {
	mu       sync.Mutex
	messages map[string][]Message
	gates    map[string]chan struct{}
	fetchErr error
	// convErrs fails fetches of one conversation only.
	convErrs map[string]error
	sendErr  error
	sendGate chan struct{}
	sent     []sentMessage

	fetches atomic.Int64
	sends   atomic.Int64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		messages: make(map[string][]Message),
		gates:    make(map[string]chan struct{}),
		convErrs: make(map[string]error),
	}
}

func (f *fakeTransport) set(conversationID string, msgs ...Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[conversationID] = msgs
}

func (f *fakeTransport) gate(conversationID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[conversationID] = ch
	return ch
}

func (f *fakeTransport) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeTransport) failConversation(conversationID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convErrs[conversationID] = err
}

func (f *fakeTransport) setSendErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func (f *fakeTransport) FetchMessages(ctx context.Context, conversationID string) ([]Message, error) {
	f.mu.Lock()
	gate := f.gates[conversationID]
	f.mu.Unlock()
	// Counted after the gate is captured so tests can swap gates safely.
	f.fetches.Add(1)
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if err := f.convErrs[conversationID]; err != nil {
		return nil, err
	}
	return cloneMessages(f.messages[conversationID]), nil
}

func (f *fakeTransport) SendMessage(ctx context.Context, conversationID, text string) error {
	f.sends.Add(1)
	f.mu.Lock()
	gate := f.sendGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{conversationID: conversationID, text: text})
	f.messages[conversationID] = append(f.messages[conversationID], Message{
		ID:       MessageID(text),
		SenderID: "viewer",
		Text:     text,
	})
	return nil
}

func (f *fakeTransport) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

var errBackend = errors.New("backend unavailable")
