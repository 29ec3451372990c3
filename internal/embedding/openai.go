package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/knowledge"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "text-embedding-3-small"
	defaultOpenAITimeout = 30 * time.Second
)

// OpenAIConfig configures the OpenAI embeddings adapter.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxInputChars caps the input length before submission; zero means
	// DefaultMaxInputChars.
	MaxInputChars int
	Timeout       time.Duration
}

// OpenAI embeds text through the OpenAI /embeddings endpoint.
type OpenAI struct {
	apiKey        string
	baseURL       string
	model         string
	maxInputChars int
	httpClient    *http.Client
	logger        *zap.Logger
}

func NewOpenAI(cfg OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOpenAITimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAI{
		apiKey:        strings.TrimSpace(cfg.APIKey),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		model:         cfg.Model,
		maxInputChars: cfg.MaxInputChars,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}, nil
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed converts text to a vector under the configured model. Input is
// silently truncated to the configured rune limit first. Any transport, auth
// or decoding failure surfaces as a knowledge.ProviderError.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	text = Truncate(text, o.maxInputChars)

	payload, err := json.Marshal(openAIEmbeddingRequest{Model: o.model, Input: text})
	if err != nil {
		return nil, &knowledge.ProviderError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &knowledge.ProviderError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &knowledge.ProviderError{Err: fmt.Errorf("openai embeddings request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &knowledge.ProviderError{
			Err: fmt.Errorf("openai embeddings returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var decoded openAIEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &knowledge.ProviderError{Err: fmt.Errorf("parse embeddings response: %w", err)}
	}

	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, &knowledge.ProviderError{Err: errors.New("no embedding data returned")}
	}

	o.logger.Debug("embedded text",
		zap.String("model", o.model),
		zap.Int("input_chars", len(text)),
		zap.Int("dimensions", len(decoded.Data[0].Embedding)),
	)

	return decoded.Data[0].Embedding, nil
}
