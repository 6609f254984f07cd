package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/types"
)

func init() {
	logger.SetOutput(&bytes.Buffer{})
}

func sampleReport() types.BranchReport {
	return types.BranchReport{
		Branch:    "Филиал Север",
		Unit:      "кг",
		Execution: types.ExecutionDanger,
		Progress:  types.Progress{Plan: 200000, Fact: 123456.7, Percent: 61.7},
		Forecast:  types.Forecast{DaysElapsed: 20, DaysInMonth: 30, MonthEnd: 185185, Percent: 92.6},
		Channels: []types.ChannelShare{
			{Channel: "Город", Sales: 100000, Share: 0.81},
			{Channel: "Хорека", Sales: 23456.7, Share: 0.19},
		},
		Inventory: []types.StockHealth{
			{Channel: "Город", Stock: 5000, DaysOfStock: 1, TurnoverIndex: 30, Status: types.StockShortage},
			{Channel: "", Stock: 9000, DaysOfStock: 1.5, TurnoverIndex: 20, Status: types.StockShortage},
		},
	}
}

func testConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		Provider:     "groq",
		BaseURL:      url,
		APIKey:       "test-key",
		Model:        "llama3-70b-8192",
		Timeout:      2 * time.Second,
		MaxRetryTime: 3 * time.Second,
	}
}

func chatReply(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return b
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleReport())

	assert.Contains(t, p, "Филиал Север")
	assert.Contains(t, p, "200,000 кг")
	assert.Contains(t, p, "123,457 кг")
	assert.Contains(t, p, "61.7%")
	assert.Contains(t, p, "185,185")
	assert.Contains(t, p, "Хорека: 23,457 (19.0%)")
	assert.Contains(t, p, "Итого: остаток 9,000")
	assert.Contains(t, p, "статус: дефицит")
	assert.Contains(t, p, "Markdown")
}

func TestChatClient_Success(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(chatReply("  ## Отчёт\nВсё плохо  "))
	}))
	defer srv.Close()

	out, err := NewChatClient(testConfig(srv.URL)).Advise(context.Background(), sampleReport())

	require.NoError(t, err)
	assert.Equal(t, "## Отчёт\nВсё плохо", out)
	assert.Equal(t, "llama3-70b-8192", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Филиал Север")
}

func TestChatClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write(chatReply("ok"))
	}))
	defer srv.Close()

	out, err := NewChatClient(testConfig(srv.URL)).Complete(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatClient_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
	}))
	defer srv.Close()

	_, err := NewChatClient(testConfig(srv.URL)).Complete(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API Key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestChatClient_EmptyChoicesFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetryTime = 500 * time.Millisecond
	_, err := NewChatClient(cfg).Complete(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestNew(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "groq", BaseURL: config.GroqURL})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(config.LLMConfig{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(config.LLMConfig{Provider: "telepathy"})
	assert.Error(t, err)

	a, err := New(config.LLMConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", a.Name())

	a, err = New(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)
	assert.Equal(t, "groq", a.Name())
}

func TestMock(t *testing.T) {
	out, err := Mock{}.Advise(context.Background(), sampleReport())

	require.NoError(t, err)
	assert.Contains(t, out, "Статус выполнения: Опасно")
	assert.Contains(t, out, "«Хорека»")
	assert.Contains(t, out, "1. ")
}

type flaky struct{ fail string }

func (f flaky) Name() string { return "flaky" }

func (f flaky) Advise(_ context.Context, r types.BranchReport) (string, error) {
	if r.Branch == f.fail {
		return "", errors.New("boom")
	}
	return "advice for " + r.Branch, nil
}

func TestAdviseAll(t *testing.T) {
	reports := []types.BranchReport{{Branch: "A"}, {Branch: "B"}, {Branch: "C"}}

	out := AdviseAll(context.Background(), flaky{fail: "B"}, reports, 2)

	require.Len(t, out, 3)
	assert.Equal(t, "advice for A", out[0].Advice)
	assert.Equal(t, "B", out[1].Branch)
	assert.Equal(t, "boom", out[1].Error)
	assert.Empty(t, out[1].Advice)
	assert.Equal(t, "advice for C", out[2].Advice)
}
