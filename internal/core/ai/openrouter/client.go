package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"food-manager/internal/core/ai/provider"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 錯誤訊息中回應內容的最大長度
const maxLoggedBody = 512

// Client OpenAI 相容 Chat Completion 客戶端（DeepSeek、OpenRouter 等）
type Client struct {
	client *resty.Client
	config *config.OpenRouterConfig
}

var _ provider.Provider = (*Client)(nil)

// chatRequest 表示 API 請求
type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	Stop        []string           `json:"stop,omitempty"`
	Stream      bool               `json:"stream"`
}

// chatResponse Chat Completion 響應結構
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message provider.Message `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

// apiError 表示 API 錯誤
type apiError struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的客戶端
func NewClient(cfg *config.OpenRouterConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "Food Manager").
		SetTimeout(timeout)

	return &Client{
		client: client,
		config: cfg,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       c.config.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = c.config.MaxTokens
	}

	common.LogDebug("Sending chat completion request",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	var result chatResponse
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", body.Model),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = truncate(resp.String())
		}
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", msg),
		)
		return nil, fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), msg)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response (response: %s)", truncate(resp.String()))
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content in response")
	}

	common.LogDebug("Successfully generated response from AI service",
		zap.String("model", body.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &provider.Response{
		Content: content,
		Usage:   result.Usage,
	}, nil
}

// GetModel 返回模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GetTimeout 返回請求超時
func (c *Client) GetTimeout() time.Duration {
	return c.client.GetClient().Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}
