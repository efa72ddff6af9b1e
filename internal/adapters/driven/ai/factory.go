// Package ai provides factory functions for creating embedding service
// adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/mcpland/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/mcpland/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Environment variables read by SettingsFromEnv.
const (
	EnvProvider      = "MCPLAND_EMBEDDING_PROVIDER"
	EnvModel         = "MCPLAND_EMBEDDING_MODEL"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvOllamaBaseURL = "OLLAMA_BASE_URL"
)

// SettingsFromEnv builds embedding settings from environment variables.
// The provider defaults to OpenAI and the model to the provider default.
func SettingsFromEnv(getenv func(string) string) domain.EmbeddingSettings {
	provider := domain.AIProvider(getenv(EnvProvider))
	if provider == "" {
		provider = domain.AIProviderOpenAI
	}

	settings := domain.EmbeddingSettings{
		Provider: provider,
		Model:    getenv(EnvModel),
	}
	if settings.Model == "" {
		settings.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch provider {
	case domain.AIProviderOpenAI:
		settings.APIKey = getenv(EnvOpenAIKey)
		settings.BaseURL = getenv(EnvOpenAIBaseURL)
	case domain.AIProviderOllama:
		settings.BaseURL = getenv(EnvOllamaBaseURL)
	}

	return settings
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil without error when the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// ValidateEmbeddingService pings svc, waiting at most pingTimeout.
// Failures wrap domain.ErrEmbeddingUnavailable.
func ValidateEmbeddingService(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		return fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable (%w)", domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	return nil
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
