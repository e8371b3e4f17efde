package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-manager/internal/core/ai/provider"
	"food-manager/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(&config.OpenRouterConfig{
		BaseURL:   url,
		APIKey:    "sk-test-key",
		Model:     "deepseek-chat",
		MaxTokens: 500,
		Timeout:   5 * time.Second,
	})
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[{"message":{"role":"assistant","content":"{\"category\":\"dairy\"}"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	req := provider.NewChatRequest("be brief", "milk")
	req.Temperature = 0.3

	resp, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"category":"dairy"}`, resp.Content)
	assert.Equal(t, 42, resp.Usage.TotalTokens)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, provider.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "milk", got.Messages[1].Content)
}

func TestGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), provider.NewChatRequest("", "milk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), provider.NewChatRequest("", "milk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestGenerateHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Generate(ctx, provider.NewChatRequest("", "milk"))
	require.Error(t, err)
}

func TestNewChatRequestWithoutSystem(t *testing.T) {
	req := provider.NewChatRequest("", "hello")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, provider.RoleUser, req.Messages[0].Role)
}
