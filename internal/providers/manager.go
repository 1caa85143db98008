package providers

import (
	"fmt"
	"strings"

	"fedcite/internal/config"
)

// New returns the batch provider named by cfg.BatchProvider.
func New(cfg config.Config) (BatchProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.BatchProvider)) {
	case "", "openai":
		return NewOpenAIBatchProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	case "mock":
		return NewMockBatchProvider(), nil
	default:
		return nil, fmt.Errorf("unknown batch provider %q", cfg.BatchProvider)
	}
}
