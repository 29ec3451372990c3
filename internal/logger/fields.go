package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for an external provider name.
	FieldProvider = "provider"
	// FieldModel is the structured log field key for a model identifier.
	FieldModel = "model"
)

// ProviderFields returns standard zap fields describing an external AI
// provider and model. Empty values are skipped to keep entries compact.
func ProviderFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)

	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}

	return fields
}

// WithProvider attaches provider fields to the logger, defaulting to a no-op
// logger when nil to avoid panics in partially wired components.
func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := ProviderFields(provider, model)
	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}
