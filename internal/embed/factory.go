package embed

import (
	"fmt"
	"strings"

	"github.com/veridoc/veridoc/internal/model"
)

// NewProvider creates a new embedding provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "hash", "":
		// Offline deterministic fallback - no external service required
		return NewHashProvider(config), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama, hash)", config.Provider)
	}
}

// ConfigFromModel converts model.EmbeddingConfig to embed.Config
func ConfigFromModel(modelConfig model.EmbeddingConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
	}
}
