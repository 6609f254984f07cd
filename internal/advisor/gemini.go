package advisor

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/types"
)

// Gemini generates advice with Google's Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{client: client, model: model, temperature: float32(cfg.Temperature)}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Advise(ctx context.Context, r types.BranchReport) (string, error) {
	log := logger.Component("advisor.gemini").WithField("model", g.model)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(r)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		log.WithError(err).Warn("gemini request failed")
		return "", fmt.Errorf("gemini advice failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini response has no content")
	}
	return text, nil
}
