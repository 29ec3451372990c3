package knowledge

import (
	"context"
	"time"
)

// Document is a single knowledge base entry. The embedding vector is derived
// from Content at write time and is never settable by callers directly. A
// document without an embedding is kept in the store but excluded from
// retrieval.
type Document struct {
	ID        string
	Title     string
	Content   string
	Category  string
	Embedding []float32
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the document view exposed past the retrieval boundary.
// Embeddings never leave the core.
type Summary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// Summarize strips the document down to its caller-facing fields.
func (d *Document) Summarize() Summary {
	return Summary{
		ID:       d.ID,
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
	}
}

// Embedder converts text into a fixed-length vector via an external embedding
// model. Implementations truncate oversized input silently and make one
// outbound call per invocation; retry policy belongs to the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the persistence boundary for documents. It is the single source of
// truth: neither the retriever nor the curator cache documents across calls.
//
// FindMany returns documents newest first; this order also defines the
// tie-break for equally scored retrieval results. An empty category matches
// every document.
type Store interface {
	FindMany(ctx context.Context, category string) ([]*Document, error)
	FindUnique(ctx context.Context, id string) (*Document, error)
	Create(ctx context.Context, doc *Document) (*Document, error)
	Update(ctx context.Context, doc *Document) (*Document, error)
	Delete(ctx context.Context, id string) error
}
