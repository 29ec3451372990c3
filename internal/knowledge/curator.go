package knowledge

import (
	"context"

	"go.uber.org/zap"
)

// Curator keeps stored embeddings consistent with document content. All
// mutations of the knowledge base go through it: creation and content changes
// re-embed, everything else leaves the vector untouched.
type Curator struct {
	store    Store
	embedder Embedder
	logger   *zap.Logger
}

func NewCurator(store Store, embedder Embedder, logger *zap.Logger) *Curator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Curator{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Store embeds content and persists a new document. The embedding must succeed
// before anything is written, so a provider failure never leaves a partially
// created document behind.
func (c *Curator) Store(ctx context.Context, title, content, category string, metadata map[string]any) (*Document, error) {
	embedding, err := c.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	doc, err := c.store.Create(ctx, &Document{
		Title:     title,
		Content:   content,
		Category:  category,
		Embedding: embedding,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("stored knowledge document",
		zap.String("id", doc.ID),
		zap.String("title", doc.Title),
		zap.String("category", doc.Category),
	)

	return doc, nil
}

// Update merges the provided fields into the stored document; nil fields keep
// their current values. Only a provided content triggers re-embedding; title
// and category changes alone leave the stored vector untouched. Returns
// ErrNotFound when id does not exist.
func (c *Curator) Update(ctx context.Context, id string, title, content, category *string) (*Document, error) {
	doc, err := c.store.FindUnique(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		doc.Title = *title
	}
	if category != nil {
		doc.Category = *category
	}
	if content != nil {
		doc.Content = *content

		embedding, err := c.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return nil, err
		}
		doc.Embedding = embedding
	}

	updated, err := c.store.Update(ctx, doc)
	if err != nil {
		return nil, err
	}

	c.logger.Info("updated knowledge document",
		zap.String("id", updated.ID),
		zap.Bool("reembedded", content != nil),
	)

	return updated, nil
}

// Delete hard-deletes a document. Returns ErrNotFound when id does not exist.
func (c *Curator) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.logger.Info("deleted knowledge document", zap.String("id", id))
	return nil
}

// ListAll returns every document as a summary, newest first.
func (c *Curator) ListAll(ctx context.Context) ([]Summary, error) {
	docs, err := c.store.FindMany(ctx, "")
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, doc.Summarize())
	}

	return summaries, nil
}
