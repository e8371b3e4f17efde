package lifecycle

import (
	"sort"
	"time"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

// MaxRankedIngredients 提供給食譜推薦的食材數量上限
const MaxRankedIngredients = 15

// RankIngredients 挑出尚未過期且有庫存的食材，依剩餘天數由少到多排序
func RankIngredients(items []model.FoodItem, now time.Time) []common.RankedIngredient {
	ranked := make([]common.RankedIngredient, 0, len(items))
	for _, item := range items {
		if item.ExpirationDate.IsZero() || item.Quantity <= 0 {
			continue
		}
		days := DaysLeft(item.ExpirationDate, now)
		if days <= 0 {
			continue
		}
		ranked = append(ranked, common.RankedIngredient{
			InventoryItemID: item.ID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			Category:        string(item.Category),
			DaysLeft:        days,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DaysLeft < ranked[j].DaysLeft
	})

	if len(ranked) > MaxRankedIngredients {
		ranked = ranked[:MaxRankedIngredients]
	}
	return ranked
}
