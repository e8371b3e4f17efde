package advisory

import (
	"context"
	"fmt"
	"time"

	"food-manager/internal/core/ai/service"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

// Oracle AI 請求介面，由 ai/service.Service 實作
type Oracle interface {
	ProcessRequest(ctx context.Context, req *service.Request) (*service.Response, error)
}

// Options 各類請求的模型參數
type Options struct {
	AdvisoryTemperature float64
	AdvisoryMaxTokens   int
	RecipeTemperature   float64
	RecipeMaxTokens     int
}

// DefaultOptions 預設模型參數
func DefaultOptions() Options {
	return Options{
		AdvisoryTemperature: 0.3,
		AdvisoryMaxTokens:   500,
		RecipeTemperature:   0.7,
		RecipeMaxTokens:     2500,
	}
}

// Client 食材建議客戶端
type Client struct {
	oracle Oracle
	opts   Options
}

// NewClient 創建建議客戶端
func NewClient(oracle Oracle, opts Options) *Client {
	return &Client{oracle: oracle, opts: opts}
}

// Resolve 取得模型對食材的原始建議內容
func (c *Client) Resolve(ctx context.Context, name string, hint model.Category, storage model.StorageCondition) (string, error) {
	if c.oracle == nil {
		return "", common.ErrAIServiceError
	}
	if !storage.Valid() {
		storage = model.DefaultStorage
	}
	resp, err := c.oracle.ProcessRequest(ctx, &service.Request{
		Purpose:     "advisory",
		System:      advisorySystemPrompt,
		Prompt:      buildAdvisoryPrompt(name, hint, storage),
		Temperature: c.opts.AdvisoryTemperature,
		MaxTokens:   c.opts.AdvisoryMaxTokens,
		Validate:    ValidAdvice,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Advise 取得並正規化建議，永遠返回合法結果
func (c *Client) Advise(ctx context.Context, name string, hint model.Category, storage model.StorageCondition) model.Advice {
	raw, err := c.Resolve(ctx, name, hint, storage)
	return Normalize(raw, err, hint, storage)
}

// Suggest 依排序後的食材請模型推薦食譜
func (c *Client) Suggest(ctx context.Context, items []common.RankedIngredient, prefs common.MealPreferences) ([]common.Recipe, error) {
	if c.oracle == nil {
		return nil, common.ErrAIServiceError
	}
	prefs = prefs.WithDefaults()
	resp, err := c.oracle.ProcessRequest(ctx, &service.Request{
		Purpose:     "recipe",
		System:      recipeSystemPrompt,
		Prompt:      buildRecipePrompt(items, prefs),
		Temperature: c.opts.RecipeTemperature,
		MaxTokens:   c.opts.RecipeMaxTokens,
		NoCache:     true,
	})
	if err != nil {
		return nil, err
	}
	return ParseRecipes(resp.Content, items)
}

// Interpret 將自然語言指令轉為更新欄位
func (c *Client) Interpret(ctx context.Context, item *model.FoodItem, instruction string, now time.Time) (*UpdateProposal, error) {
	if c.oracle == nil {
		return nil, common.ErrAIServiceError
	}
	resp, err := c.oracle.ProcessRequest(ctx, &service.Request{
		Purpose:     "update",
		System:      updateSystemPrompt,
		Prompt:      buildUpdatePrompt(item, instruction, now),
		Temperature: c.opts.AdvisoryTemperature,
		MaxTokens:   c.opts.AdvisoryMaxTokens,
		NoCache:     true,
	})
	if err != nil {
		return nil, err
	}
	proposal, err := ParseUpdate(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI update: %w", err)
	}
	return proposal, nil
}
