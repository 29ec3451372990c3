package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/floai/flo-assistant/internal/knowledge"
)

const defaultGeminiModel = "gemini-embedding-001"

// GeminiConfig configures the Gemini embeddings adapter.
type GeminiConfig struct {
	APIKey        string
	Model         string
	MaxInputChars int
}

// Gemini embeds text through the Gemini API backend of the Google GenAI SDK.
type Gemini struct {
	client        *genai.Client
	model         string
	maxInputChars int
	logger        *zap.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	maxInputChars := cfg.MaxInputChars
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gemini{
		client:        client,
		model:         model,
		maxInputChars: maxInputChars,
		logger:        logger,
	}, nil
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	text = Truncate(text, g.maxInputChars)

	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, &knowledge.ProviderError{Err: fmt.Errorf("gemini embed content: %w", err)}
	}

	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, &knowledge.ProviderError{Err: errors.New("gemini api returned empty embedding")}
	}

	g.logger.Debug("embedded text",
		zap.String("model", g.model),
		zap.Int("input_chars", len(text)),
		zap.Int("dimensions", len(resp.Embeddings[0].Values)),
	)

	return resp.Embeddings[0].Values, nil
}
