package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floai/flo-assistant/internal/knowledge"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "short input unchanged", input: "hello", limit: 10, expect: "hello"},
		{name: "cut to limit", input: "hello world", limit: 5, expect: "hello"},
		{name: "non-positive limit disables truncation", input: "hello", limit: 0, expect: "hello"},
		{name: "multibyte runes counted as one", input: "héllo wörld", limit: 5, expect: "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, Truncate(tt.input, tt.limit))
		})
	}
}

func newEmbeddingsServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIEmbed(t *testing.T) {
	t.Parallel()

	var gotBody openAIEmbeddingRequest
	server := newEmbeddingsServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0}},
		})
	})

	provider, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	vec, err := provider.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, defaultOpenAIModel, gotBody.Model)
	assert.Equal(t, "some text", gotBody.Input)
}

func TestOpenAIEmbedTruncatesInput(t *testing.T) {
	t.Parallel()

	var gotInput string
	server := newEmbeddingsServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotInput = body.Input

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1}}},
		})
	})

	provider, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: server.URL, MaxInputChars: 10}, nil)
	require.NoError(t, err)

	_, err = provider.Embed(context.Background(), strings.Repeat("x", 50))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 10), gotInput)
}

func TestOpenAIEmbedAPIError(t *testing.T) {
	t.Parallel()

	server := newEmbeddingsServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limit"}}`, http.StatusTooManyRequests)
	})

	provider, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = provider.Embed(context.Background(), "text")

	var pe *knowledge.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIEmbedEmptyData(t *testing.T) {
	t.Parallel()

	server := newEmbeddingsServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	provider, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = provider.Embed(context.Background(), "text")

	var pe *knowledge.ProviderError
	require.ErrorAs(t, err, &pe)
}

func TestOpenAIRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAI(OpenAIConfig{}, nil)
	require.Error(t, err)
}
