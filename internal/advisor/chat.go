package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/types"
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint (Groq, OpenAI
// or any gateway speaking the same protocol).
type ChatClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

func NewChatClient(cfg config.LLMConfig) *ChatClient {
	return &ChatClient{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (c *ChatClient) Name() string { return c.cfg.Provider }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ChatClient) Advise(ctx context.Context, r types.BranchReport) (string, error) {
	return c.Complete(ctx, BuildPrompt(r))
}

// Complete sends one user message and returns the first choice. Network errors,
// 429 and 5xx are retried with exponential backoff; other 4xx fail at once.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	log := logger.Component("advisor.chat").WithField("provider", c.cfg.Provider).WithField("model", c.cfg.Model)

	data, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode llm request: %w", err)
	}
	log.WithField("payload_len", len(data)).Debug("llm request prepared")

	var content string
	var lastErr error

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		log.WithField("http_status", resp.StatusCode).Debug("llm raw:\n" + string(body))

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm http %d: %s", resp.StatusCode, errorMessage(body))
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				// Permanent: don't retry on client errors
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			lastErr = fmt.Errorf("decode llm response: %w", err)
			return lastErr
		}
		if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
			lastErr = fmt.Errorf("llm response has no content")
			return lastErr
		}
		content = strings.TrimSpace(parsed.Choices[0].Message.Content)
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 300 * time.Millisecond
	b.MaxElapsedTime = c.cfg.MaxRetryTime
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 45 * time.Second
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("llm advice failed: %w", lastErr)
	}
	log.WithField("content_len", len(content)).Info("llm advice received")
	return content, nil
}

// errorMessage pulls error.message out of an OpenAI-style error body.
func errorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
