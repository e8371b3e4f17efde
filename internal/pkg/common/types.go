package common

import (
	"fmt"
	"strings"
)

// MealPreferences 食譜推薦偏好
type MealPreferences struct {
	Type                  string `json:"type"`                   // 餐別（早餐、晚餐…）
	Style                 string `json:"style"`                  // 料理風格
	MaxTime               int    `json:"max_time"`               // 最長烹調時間（分鐘）
	Servings              int    `json:"servings"`               // 份量（人數）
	AdditionalPreferences string `json:"additional_preferences"` // 其他偏好
}

// WithDefaults 補齊未填寫的偏好
func (p MealPreferences) WithDefaults() MealPreferences {
	if p.MaxTime <= 0 {
		p.MaxTime = 60
	}
	if p.Servings <= 0 {
		p.Servings = 2
	}
	return p
}

// RankedIngredient 依到期先後排序後的可用食材
type RankedIngredient struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Category        string  `json:"category"`
	DaysLeft        int     `json:"days_left"`
}

// RecipeIngredient 食譜所需食材
// InventoryItemID 為 nil 代表不是庫存中的食材
type RecipeIngredient struct {
	Name             string  `json:"name"`
	QuantityRequired float64 `json:"quantity_required"`
	Unit             string  `json:"unit"`
	InventoryItemID  *string `json:"inventory_item_id"`
}

// Recipe 推薦食譜
type Recipe struct {
	Name            string             `json:"name"`
	Servings        int                `json:"servings"`
	PrepTime        int                `json:"prep_time"`
	CookTime        int                `json:"cook_time"`
	TotalTime       int                `json:"total_time"`
	Description     string             `json:"description"`
	IngredientsUsed []string           `json:"ingredients_used"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
	Instructions    []string           `json:"instructions"`
}

// FormatRankedIngredients 格式化可用食材列表（供 prompt 使用）
func FormatRankedIngredients(items []RankedIngredient) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- [id: %s] %s (%s %s) - expires in %d days\n",
			item.InventoryItemID, item.Name, formatQuantity(item.Quantity), item.Unit, item.DaysLeft))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatQuantity 去掉多餘的小數位
func formatQuantity(q float64) string {
	s := fmt.Sprintf("%.2f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// OrDefault 空字串時返回預設值
func OrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
