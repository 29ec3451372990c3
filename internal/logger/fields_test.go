package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestProviderFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		model    string
		expect   int
	}{
		{name: "both set", provider: "openai", model: "text-embedding-3-small", expect: 2},
		{name: "model only", provider: " ", model: "gemini-2.5-flash", expect: 1},
		{name: "none", provider: "", model: "", expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ProviderFields(tt.provider, tt.model); len(got) != tt.expect {
				t.Fatalf("expected %d fields, got %d", tt.expect, len(got))
			}
		})
	}
}

func TestWithProviderNilLogger(t *testing.T) {
	t.Parallel()

	if WithProvider(nil, "openai", "model") == nil {
		t.Fatal("expected a usable logger")
	}

	if WithProvider(zap.NewNop(), "", "") == nil {
		t.Fatal("expected the input logger back")
	}
}
