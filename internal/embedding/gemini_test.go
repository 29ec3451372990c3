package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiDefaults(t *testing.T) {
	t.Parallel()

	adapter, err := NewGemini(context.Background(), GeminiConfig{APIKey: "test-key"}, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultGeminiModel, adapter.model)
	assert.Equal(t, DefaultMaxInputChars, adapter.maxInputChars)
	assert.NotNil(t, adapter.logger, "logger should fall back to a no-op logger")
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewGemini(context.Background(), GeminiConfig{}, nil)
	assert.Error(t, err)
}
