package recipe

import (
	"context"
	"time"

	"food-manager/internal/core/lifecycle"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// 推薦結果訊息
const (
	MessageNoIngredients = "No available ingredients in inventory"
	MessageSuggestFailed = "Meal suggestion failed, please try again later"
)

// Inventory 提供目前庫存
type Inventory interface {
	Inventory(ctx context.Context) ([]model.FoodItem, error)
	Now() time.Time
}

// Suggester 依食材產生食譜
type Suggester interface {
	Suggest(ctx context.Context, items []common.RankedIngredient, prefs common.MealPreferences) ([]common.Recipe, error)
}

// SuggestionResult 食譜推薦結果
type SuggestionResult struct {
	Success             bool            `json:"success"`
	Message             string          `json:"message,omitempty"`
	Recipes             []common.Recipe `json:"recipes"`
	AvailableItemsCount int             `json:"available_items_count"`
}

// SuggestionService 食譜推薦服務
type SuggestionService struct {
	inventory Inventory
	suggester Suggester
}

// NewSuggestionService 創建新的食譜推薦服務
func NewSuggestionService(inventory Inventory, suggester Suggester) *SuggestionService {
	return &SuggestionService{
		inventory: inventory,
		suggester: suggester,
	}
}

// SuggestMeals 依即將到期的食材推薦食譜
// 模型失敗時返回 success=false，只有讀取庫存失敗才返回錯誤
func (s *SuggestionService) SuggestMeals(ctx context.Context, prefs common.MealPreferences) (*SuggestionResult, error) {
	items, err := s.inventory.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	ranked := lifecycle.RankIngredients(items, s.inventory.Now())
	if len(ranked) == 0 {
		return &SuggestionResult{
			Success: false,
			Message: MessageNoIngredients,
			Recipes: []common.Recipe{},
		}, nil
	}

	start := time.Now()
	recipes, err := s.suggester.Suggest(ctx, ranked, prefs.WithDefaults())
	if err != nil {
		common.LogWarn("Meal suggestion failed",
			zap.Int("ingredients", len(ranked)),
			zap.Error(err),
		)
		return &SuggestionResult{
			Success:             false,
			Message:             MessageSuggestFailed,
			Recipes:             []common.Recipe{},
			AvailableItemsCount: len(ranked),
		}, nil
	}

	common.LogInfo("Meal suggestions generated",
		zap.Int("recipes", len(recipes)),
		zap.Int("ingredients", len(ranked)),
		zap.Duration("duration", time.Since(start)),
	)
	return &SuggestionResult{
		Success:             true,
		Recipes:             recipes,
		AvailableItemsCount: len(ranked),
	}, nil
}
