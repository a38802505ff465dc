// Package testutil provides helpers shared by end-to-end tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/tOgg1/offerchat/internal/devserver"
)

// Backend is a dev server on a loopback port, backed by a temporary database.
type Backend struct {
	Server *httptest.Server
	Store  *devserver.Store
	// BaseURL is the API base clients should use.
	BaseURL string
}

// NewBackend starts a dev server mounted under /api. It is closed when the
// test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	SkipIfNoNetwork(t)

	store, err := devserver.OpenStore(context.Background(), filepath.Join(t.TempDir(), "dev.db"))
	if err != nil {
		t.Fatalf("failed to open dev store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(devserver.NewServer(devserver.Config{PathPrefix: "/api"}, store).Handler())
	t.Cleanup(srv.Close)

	return &Backend{Server: srv, Store: store, BaseURL: srv.URL + "/api"}
}

// Session creates a participant session and returns its token.
func (b *Backend) Session(t *testing.T, id, name string) string {
	t.Helper()
	token, err := b.Store.CreateSession(context.Background(), devserver.Participant{ID: id, Name: name})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return token
}

// Post stores a message as if it had been sent by the participant.
func (b *Backend) Post(t *testing.T, offerID, senderID, senderName, text string) {
	t.Helper()
	_, err := b.Store.InsertMessage(context.Background(), offerID, devserver.Participant{ID: senderID, Name: senderName}, text)
	if err != nil {
		t.Fatalf("failed to insert message: %v", err)
	}
}
