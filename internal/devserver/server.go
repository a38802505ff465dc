package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/tOgg1/offerchat/internal/chat"
	"github.com/tOgg1/offerchat/internal/logging"
)

const maxRequestBytes = 64 << 10

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address.
	Addr string
	// PathPrefix mounts the endpoints, e.g. "/api" serves /api/messages.
	PathPrefix string
	// SessionCookie names the cookie that carries the session token.
	SessionCookie string
	// MaxMessageLength rejects longer messages with 400.
	MaxMessageLength int
}

// Server serves GET and POST /messages.
type Server struct {
	cfg    Config
	store  *Store
	logger zerolog.Logger
}

// NewServer creates a server over store.
func NewServer(cfg Config, store *Store) *Server {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = chat.DefaultSessionCookie
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = chat.DefaultMaxMessageLength
	}
	cfg.PathPrefix = "/" + strings.Trim(cfg.PathPrefix, "/")
	return &Server{cfg: cfg, store: store, logger: logging.Component("devserver")}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r
	if s.cfg.PathPrefix != "/" {
		api = r.PathPrefix(s.cfg.PathPrefix).Subrouter()
	}
	api.HandleFunc("/messages", s.listMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.createMessage).Methods(http.MethodPost)
	r.Use(s.logRequests)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Str("prefix", s.cfg.PathPrefix).Msg("dev server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type sendPayload struct {
	OfferID     string `json:"offer_id"`
	MessageText string `json:"message_text"`
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	offerID := strings.TrimSpace(r.URL.Query().Get("offer_id"))
	if offerID == "" {
		writeError(w, http.StatusBadRequest, "offer_id is required")
		return
	}

	msgs, err := s.store.ListMessages(r.Context(), offerID)
	if err != nil {
		s.logger.Error().Err(err).Str("offer_id", offerID).Msg("list messages failed")
		writeError(w, http.StatusInternalServerError, "could not load messages")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Messages []chat.Message `json:"messages"`
	}{Messages: msgs})
}

func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	sender, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var payload sendPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	offerID := strings.TrimSpace(payload.OfferID)
	text := strings.TrimSpace(payload.MessageText)
	switch {
	case offerID == "":
		writeError(w, http.StatusBadRequest, "offer_id is required")
		return
	case text == "":
		writeError(w, http.StatusBadRequest, "message_text is required")
		return
	case utf8.RuneCountInString(text) > s.cfg.MaxMessageLength:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("message_text exceeds %d characters", s.cfg.MaxMessageLength))
		return
	}

	msg, err := s.store.InsertMessage(r.Context(), offerID, sender, text)
	if err != nil {
		s.logger.Error().Err(err).Str("offer_id", offerID).Msg("insert message failed")
		writeError(w, http.StatusInternalServerError, "could not save message")
		return
	}
	s.logger.Info().Str("offer_id", offerID).Str("sender_id", sender.ID).Str("id", string(msg.ID)).Msg("message created")
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (Participant, bool) {
	cookie, err := r.Cookie(s.cfg.SessionCookie)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		writeError(w, http.StatusUnauthorized, "session required")
		return Participant{}, false
	}
	p, err := s.store.LookupSession(r.Context(), cookie.Value)
	if errors.Is(err, ErrUnknownSession) {
		writeError(w, http.StatusUnauthorized, "session required")
		return Participant{}, false
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("session lookup failed")
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return Participant{}, false
	}
	return p, true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("url", logging.RedactURL(r.URL.String())).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
