package knowledge

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// DefaultLimit is the number of documents returned when callers have no
// specific requirement. Conversation grounding typically asks for 3, single
// lookups for 1.
const DefaultLimit = 5

// Retriever answers "top-K documents relevant to a query" with a brute-force
// linear scan: every query embeds the query text, fetches the whole (optionally
// category-filtered) document set and scores each candidate. Cost grows with
// the total document count, which is acceptable while the knowledge base stays
// small; an ANN index could replace the scan behind the same contract.
type Retriever struct {
	store    Store
	embedder Embedder
	logger   *zap.Logger
}

func NewRetriever(store Store, embedder Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve returns at most limit document summaries ordered by descending
// cosine similarity to the query. Documents without an embedding are excluded
// from scoring entirely. Equal scores keep the store's fetch order, so results
// are deterministic for a fixed store snapshot. A non-positive limit yields an
// empty result without touching the provider or the store.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int, category string) ([]Summary, error) {
	if limit <= 0 {
		return []Summary{}, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	docs, err := r.store.FindMany(ctx, category)
	if err != nil {
		return nil, err
	}

	type scored struct {
		doc   *Document
		score float64
	}

	candidates := make([]scored, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: Cosine(queryVec, doc.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]Summary, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, c.doc.Summarize())
	}

	r.logger.Debug("retrieved relevant knowledge",
		zap.Int("fetched", len(docs)),
		zap.Int("returned", len(results)),
		zap.Int("limit", limit),
		zap.String("category", category),
	)

	return results, nil
}
