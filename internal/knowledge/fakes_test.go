package knowledge

import (
	"context"
	"fmt"
	"time"
)

// fakeEmbedder returns canned vectors per input text and records every call.
type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	if f.fallback != nil {
		return f.fallback, nil
	}
	return nil, fmt.Errorf("no canned vector for %q", text)
}

// fakeStore is an in-memory Store keeping documents in insertion order and
// serving them newest first, mirroring the sqlite-backed implementation.
type fakeStore struct {
	docs    []*Document
	nextID  int
	findErr error
}

func (f *fakeStore) FindMany(_ context.Context, category string) ([]*Document, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	var out []*Document
	for i := len(f.docs) - 1; i >= 0; i-- {
		doc := f.docs[i]
		if category != "" && doc.Category != category {
			continue
		}
		copied := *doc
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeStore) FindUnique(_ context.Context, id string) (*Document, error) {
	for _, doc := range f.docs {
		if doc.ID == id {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, doc *Document) (*Document, error) {
	f.nextID++
	created := *doc
	created.ID = fmt.Sprintf("doc-%d", f.nextID)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.docs = append(f.docs, &created)

	copied := created
	return &copied, nil
}

func (f *fakeStore) Update(_ context.Context, doc *Document) (*Document, error) {
	for i, existing := range f.docs {
		if existing.ID == doc.ID {
			updated := *doc
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = time.Now()
			f.docs[i] = &updated

			copied := updated
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for i, doc := range f.docs {
		if doc.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
