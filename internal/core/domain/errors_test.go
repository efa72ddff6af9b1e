package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidIdentity", ErrInvalidIdentity},
		{"ErrPluginMismatch", ErrPluginMismatch},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrIngestionCancelled", ErrIngestionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("plugin %q: %w", "angular", ErrAlreadyExists)

	assert.True(t, errors.Is(wrapped, ErrAlreadyExists))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Contains(t, wrapped.Error(), "already exists")
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: "anthropic", APIKey: "x"}.IsConfigured())
}
