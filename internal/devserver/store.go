// Package devserver is a local SQLite-backed implementation of the two
// messages endpoints, for development and end-to-end tests.
package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tOgg1/offerchat/internal/chat"
)

// ErrUnknownSession is returned when a session token has no participant.
var ErrUnknownSession = errors.New("unknown session")

// Participant is a user resolved from a session.
type Participant struct {
	ID   string
	Name string
}

// Store persists sessions and messages.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (and creates) the database at path. ":memory:" is accepted.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			offer_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			sender_name TEXT NOT NULL,
			message_text TEXT NOT NULL,
			sent_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_offer_idx ON messages(offer_id, seq)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// CreateSession issues a new session token for a participant.
func (s *Store) CreateSession(ctx context.Context, p Participant) (string, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return "", errors.New("participant id required")
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = p.ID
	}
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, user_name, created_at) VALUES (?, ?, ?, ?)`,
		token, p.ID, p.Name, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// LookupSession resolves a session token.
func (s *Store) LookupSession(ctx context.Context, token string) (Participant, error) {
	var p Participant
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, user_name FROM sessions WHERE token = ?`, token,
	).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Participant{}, ErrUnknownSession
	}
	if err != nil {
		return Participant{}, fmt.Errorf("failed to look up session: %w", err)
	}
	return p, nil
}

// ListMessages returns the conversation in insertion order.
func (s *Store) ListMessages(ctx context.Context, offerID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, sender_name, message_text, sent_at
		FROM messages
		WHERE offer_id = ?
		ORDER BY seq ASC
	`, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	out := make([]chat.Message, 0)
	for rows.Next() {
		var (
			msg    chat.Message
			id     string
			sentAt string
		)
		if err := rows.Scan(&id, &msg.SenderID, &msg.SenderName, &msg.Text, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.ID = chat.MessageID(id)
		ts, err := chat.ParseTimestamp(sentAt)
		if err != nil {
			return nil, err
		}
		msg.SentAt = chat.Timestamp{Time: ts}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return out, nil
}

// InsertMessage stores text from sender in the offer conversation.
func (s *Store) InsertMessage(ctx context.Context, offerID string, sender Participant, text string) (chat.Message, error) {
	msg := chat.Message{
		ID:         chat.MessageID(uuid.NewString()),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Text:       text,
		SentAt:     chat.Timestamp{Time: s.now().UTC()},
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, offer_id, sender_id, sender_name, message_text, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(msg.ID), offerID, msg.SenderID, msg.SenderName, msg.Text, msg.SentAt.Format(time.RFC3339Nano))
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}
