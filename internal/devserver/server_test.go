package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/offerchat/internal/chat"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "dev.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *Store) {
	t.Helper()
	store := newTestStore(t)
	srv := httptest.NewServer(NewServer(cfg, store).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestStoreSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	token, err := store.CreateSession(ctx, Participant{ID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := store.LookupSession(ctx, token)
	require.NoError(t, err)
	require.Equal(t, Participant{ID: "u1", Name: "u1"}, p)

	_, err = store.LookupSession(ctx, "missing")
	require.ErrorIs(t, err, ErrUnknownSession)

	_, err = store.CreateSession(ctx, Participant{})
	require.Error(t, err)
}

func TestStoreMessagesKeepInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	alice := Participant{ID: "a", Name: "Alice"}
	for _, text := range []string{"one", "two", "three"} {
		_, err := store.InsertMessage(ctx, "offer-1", alice, text)
		require.NoError(t, err)
	}
	_, err := store.InsertMessage(ctx, "offer-2", alice, "elsewhere")
	require.NoError(t, err)

	msgs, err := store.ListMessages(ctx, "offer-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, []string{"one", "two", "three"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
	require.Equal(t, fixed, msgs[0].SentAt.Time)
	require.Equal(t, "Alice", msgs[0].SenderName)

	empty, err := store.ListMessages(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestMemoryStore(t *testing.T) {
	store, err := OpenStore(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.InsertMessage(context.Background(), "o", Participant{ID: "a", Name: "A"}, "hi")
	require.NoError(t, err)
	msgs, err := store.ListMessages(context.Background(), "o")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestServerRoundTripWithClient(t *testing.T) {
	srv, store := newTestServer(t, Config{PathPrefix: "/api"})
	ctx := context.Background()

	aliceToken, err := store.CreateSession(ctx, Participant{ID: "alice", Name: "Alice"})
	require.NoError(t, err)
	bobToken, err := store.CreateSession(ctx, Participant{ID: "bob", Name: "Bob"})
	require.NoError(t, err)

	alice, err := chat.NewClient(chat.Config{BaseURL: srv.URL + "/api", SessionToken: aliceToken})
	require.NoError(t, err)
	bob, err := chat.NewClient(chat.Config{BaseURL: srv.URL + "/api", SessionToken: bobToken})
	require.NoError(t, err)

	msgs, err := alice.FetchMessages(ctx, "offer-1")
	require.NoError(t, err)
	require.Empty(t, msgs)

	require.NoError(t, alice.SendMessage(ctx, "offer-1", "  <script>alert(1)</script>  "))
	require.NoError(t, bob.SendMessage(ctx, "offer-1", "hi alice"))

	msgs, err = bob.FetchMessages(ctx, "offer-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "alice", msgs[0].SenderID)
	require.Equal(t, "<script>alert(1)</script>", msgs[0].Text)
	require.Equal(t, "bob", msgs[1].SenderID)
	require.False(t, msgs[0].SentAt.IsZero())
}

func TestServerRejectsBadRequests(t *testing.T) {
	srv, store := newTestServer(t, Config{MaxMessageLength: 5})
	token, err := store.CreateSession(context.Background(), Participant{ID: "u"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		cookie string
		status int
	}{
		{name: "no session", method: http.MethodGet, path: "/messages?offer_id=o", status: http.StatusUnauthorized},
		{name: "bad session", method: http.MethodGet, path: "/messages?offer_id=o", cookie: "nope", status: http.StatusUnauthorized},
		{name: "missing offer", method: http.MethodGet, path: "/messages", cookie: token, status: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, path: "/messages", body: "{", cookie: token, status: http.StatusBadRequest},
		{name: "blank text", method: http.MethodPost, path: "/messages", body: `{"offer_id":"o","message_text":"   "}`, cookie: token, status: http.StatusBadRequest},
		{name: "too long", method: http.MethodPost, path: "/messages", body: `{"offer_id":"o","message_text":"123456"}`, cookie: token, status: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodDelete, path: "/messages", cookie: token, status: http.StatusMethodNotAllowed},
		{name: "ok", method: http.MethodPost, path: "/messages", body: `{"offer_id":"o","message_text":"12345"}`, cookie: token, status: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tt.cookie})
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	store := newTestStore(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(Config{}, store).Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/messages?offer_id=o")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusUnauthorized
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.False(t, err != nil && !errors.Is(err, http.ErrServerClosed), "unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
