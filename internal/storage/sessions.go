package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/floai/flo-assistant/internal/conversation"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS conversation_sessions (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL UNIQUE,
    intent TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS conversation_messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    metadata TEXT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversation_messages_session ON conversation_messages (session_id);
`

// UpsertSession creates the session row on first sight. An existing session
// keeps its row id and created_at; the intent and updated_at are refreshed so
// a mid-conversation intent switch is reflected.
func (s *SQLiteStore) UpsertSession(ctx context.Context, sessionID, intent string) (*conversation.Session, error) {
	now := s.now().UTC().Format(timeLayout)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_sessions (id, session_id, intent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET intent = excluded.intent, updated_at = excluded.updated_at`,
		uuid.New().String(), sessionID, intent, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert session %s: %w", sessionID, err)
	}

	return s.scanSession(ctx, sessionID, false)
}

// AppendMessage stores one message under the session, preserving insertion
// order for identical timestamps via rowid.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg conversation.Message) error {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		data, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("marshal message metadata: %w", err)
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_messages (id, session_id, role, content, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, msg.Role, msg.Content, metadata, createdAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("append message to session %s: %w", sessionID, err)
	}

	return nil
}

// FindSession returns the session and its messages, oldest first. Returns
// conversation.ErrNotFound for an unknown session id.
func (s *SQLiteStore) FindSession(ctx context.Context, sessionID string) (*conversation.Session, error) {
	return s.scanSession(ctx, sessionID, true)
}

// ListSessions returns sessions newest first, each with its messages, plus
// the total session count for the intent filter. An empty intent matches
// everything.
func (s *SQLiteStore) ListSessions(ctx context.Context, intent string, offset, limit int) ([]*conversation.Session, int, error) {
	where := ``
	args := []any{}
	if intent != "" {
		where = ` WHERE intent = ?`
		args = append(args, intent)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_sessions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, intent, created_at, updated_at FROM conversation_sessions`+
			where+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*conversation.Session
	for rows.Next() {
		session, err := scanSessionRow(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	for _, session := range sessions {
		if session.Messages, err = s.sessionMessages(ctx, session.SessionID); err != nil {
			return nil, 0, err
		}
	}

	return sessions, total, nil
}

func (s *SQLiteStore) scanSession(ctx context.Context, sessionID string, withMessages bool) (*conversation.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, intent, created_at, updated_at
		 FROM conversation_sessions WHERE session_id = ?`, sessionID,
	)

	session, err := scanSessionRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, conversation.ErrNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	if withMessages {
		if session.Messages, err = s.sessionMessages(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	return session, nil
}

func (s *SQLiteStore) sessionMessages(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, metadata, created_at FROM conversation_messages
		 WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load messages for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var messages []conversation.Message
	for rows.Next() {
		var (
			msg       conversation.Message
			metadata  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&msg.Role, &msg.Content, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message for session %s: %w", sessionID, err)
		}

		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal message metadata for session %s: %w", sessionID, err)
			}
		}
		if msg.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse message created_at for session %s: %w", sessionID, err)
		}

		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load messages for session %s: %w", sessionID, err)
	}

	return messages, nil
}

func scanSessionRow(scan func(dest ...any) error) (*conversation.Session, error) {
	var (
		session              conversation.Session
		createdAt, updatedAt string
	)

	if err := scan(&session.ID, &session.SessionID, &session.Intent, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if session.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for session %s: %w", session.SessionID, err)
	}
	if session.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for session %s: %w", session.SessionID, err)
	}

	return &session, nil
}
