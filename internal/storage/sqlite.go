package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/floai/flo-assistant/internal/knowledge"
)

// Fixed-width timestamps (always UTC) so the lexicographic ORDER BY matches
// chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

const schema = `
CREATE TABLE IF NOT EXISTS knowledge_documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    embedding TEXT NULL,
    metadata TEXT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_knowledge_documents_category ON knowledge_documents (category);
`

// SQLiteStore persists knowledge documents in a local SQLite database. It is
// the single source of truth for document state; embeddings are stored as a
// JSON number array alongside the document. Concurrent writers rely on
// SQLite's own transaction semantics, the store adds no locking of its own.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database at %q: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating knowledge_documents table: %w", err)
	}

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating conversation tables: %w", err)
	}

	logger.Debug("opened knowledge store", zap.String("path", path))

	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindMany returns documents newest first. The insertion rowid breaks ties
// between identical timestamps so the order is deterministic. An empty
// category matches everything.
func (s *SQLiteStore) FindMany(ctx context.Context, category string) ([]*knowledge.Document, error) {
	query := `SELECT id, title, content, category, embedding, metadata, created_at, updated_at
	          FROM knowledge_documents`
	args := []any{}

	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &knowledge.StoreError{Op: "find", Err: err}
	}
	defer rows.Close()

	var docs []*knowledge.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, &knowledge.StoreError{Op: "find", Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &knowledge.StoreError{Op: "find", Err: err}
	}

	return docs, nil
}

func (s *SQLiteStore) FindUnique(ctx context.Context, id string) (*knowledge.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, category, embedding, metadata, created_at, updated_at
		 FROM knowledge_documents WHERE id = ?`, id,
	)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, knowledge.ErrNotFound
		}
		return nil, &knowledge.StoreError{Op: "get", Err: err}
	}

	return doc, nil
}

func (s *SQLiteStore) Create(ctx context.Context, doc *knowledge.Document) (*knowledge.Document, error) {
	created := *doc
	created.ID = uuid.New().String()
	created.CreatedAt = s.now().UTC()
	created.UpdatedAt = created.CreatedAt

	embedding, metadata, err := marshalFields(&created)
	if err != nil {
		return nil, &knowledge.StoreError{Op: "create", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO knowledge_documents (id, title, content, category, embedding, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Title, created.Content, created.Category,
		embedding, metadata,
		created.CreatedAt.Format(timeLayout), created.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, &knowledge.StoreError{Op: "create", Err: err}
	}

	return &created, nil
}

func (s *SQLiteStore) Update(ctx context.Context, doc *knowledge.Document) (*knowledge.Document, error) {
	updated := *doc
	updated.UpdatedAt = s.now().UTC()

	embedding, metadata, err := marshalFields(&updated)
	if err != nil {
		return nil, &knowledge.StoreError{Op: "update", Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE knowledge_documents
		 SET title = ?, content = ?, category = ?, embedding = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		updated.Title, updated.Content, updated.Category,
		embedding, metadata,
		updated.UpdatedAt.Format(timeLayout), updated.ID,
	)
	if err != nil {
		return nil, &knowledge.StoreError{Op: "update", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &knowledge.StoreError{Op: "update", Err: err}
	}
	if affected == 0 {
		return nil, knowledge.ErrNotFound
	}

	return &updated, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_documents WHERE id = ?`, id)
	if err != nil {
		return &knowledge.StoreError{Op: "delete", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &knowledge.StoreError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return knowledge.ErrNotFound
	}

	return nil
}

func marshalFields(doc *knowledge.Document) (embedding, metadata sql.NullString, err error) {
	if len(doc.Embedding) > 0 {
		data, err := json.Marshal(doc.Embedding)
		if err != nil {
			return embedding, metadata, fmt.Errorf("marshal embedding: %w", err)
		}
		embedding = sql.NullString{String: string(data), Valid: true}
	}

	if len(doc.Metadata) > 0 {
		data, err := json.Marshal(doc.Metadata)
		if err != nil {
			return embedding, metadata, fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	return embedding, metadata, nil
}

func scanDocument(scan func(dest ...any) error) (*knowledge.Document, error) {
	var (
		doc                  knowledge.Document
		embedding, metadata  sql.NullString
		createdAt, updatedAt string
	)

	if err := scan(&doc.ID, &doc.Title, &doc.Content, &doc.Category, &embedding, &metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &doc.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for %s: %w", doc.ID, err)
		}
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", doc.ID, err)
		}
	}

	var err error
	if doc.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", doc.ID, err)
	}
	if doc.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for %s: %w", doc.ID, err)
	}

	return &doc, nil
}
