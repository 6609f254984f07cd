// Package advisor turns a branch report into a natural-language recommendation
// through a language-model provider.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"salespro-go/internal/config"
	"salespro-go/internal/types"
)

var ErrNotConfigured = errors.New("llm provider not configured: set GROQ_API_KEY, GEMINI_API_KEY or LLM_API_KEY")

// Advisor writes a Markdown recommendation for one branch.
type Advisor interface {
	Advise(ctx context.Context, r types.BranchReport) (string, error)
	Name() string
}

// New builds the advisor for cfg.Provider. A provider without an API key is
// reported as ErrNotConfigured so callers can degrade to a warning.
func New(cfg config.LLMConfig) (Advisor, error) {
	switch cfg.Provider {
	case "mock":
		return Mock{}, nil
	case "groq", "openai":
		if cfg.APIKey == "" || cfg.BaseURL == "" {
			return nil, ErrNotConfigured
		}
		return NewChatClient(cfg), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		g, err := NewGemini(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
