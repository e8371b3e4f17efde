package lifecycle

import (
	"strings"

	"food-manager/internal/core/model"
)

// UserFields 使用者建立食材時填寫的欄位
// Storage 為 nil 代表未指定
type UserFields struct {
	Name     string
	Category model.Category
	Storage  *model.StorageCondition
	Emoji    string
}

// MergedFields 合併使用者欄位與建議後的結果
type MergedFields struct {
	Name             string
	Category         model.Category
	StorageCondition model.StorageCondition
	Emoji            string
	ShelfLifeDays    int
	StorageTips      string
}

// MergePolicy 合併規則設定
type MergePolicy struct {
	// PantryMeansUnset 明確指定 pantry 時仍視為未指定，交由建議決定
	PantryMeansUnset bool
}

// Merge 依優先順序合併使用者欄位與建議
//   - 分類：使用者 > 建議
//   - 保存方式：使用者明確指定 > 建議
//   - 圖示：使用者 > 建議 > 通用圖示
//   - 保存天數、保存建議：一律取自建議
func (p MergePolicy) Merge(user UserFields, advice model.Advice) MergedFields {
	out := MergedFields{
		Name:             strings.TrimSpace(user.Name),
		Category:         advice.Category,
		StorageCondition: advice.StorageRecommendation,
		Emoji:            advice.Emoji,
		ShelfLifeDays:    advice.ShelfLifeDays,
		StorageTips:      advice.StorageTips,
	}

	if user.Category.Valid() {
		out.Category = user.Category
	}
	if p.storageExplicit(user.Storage) {
		out.StorageCondition = *user.Storage
	}
	if strings.TrimSpace(user.Emoji) != "" {
		out.Emoji = user.Emoji
	}

	if !out.Category.Valid() {
		out.Category = model.CategoryOther
	}
	if !out.StorageCondition.Valid() {
		out.StorageCondition = model.DefaultStorage
	}
	if out.Emoji == "" {
		out.Emoji = model.FallbackEmoji
	}
	if out.ShelfLifeDays <= 0 {
		out.ShelfLifeDays = model.DefaultShelfLifeDays
	}
	return out
}

func (p MergePolicy) storageExplicit(s *model.StorageCondition) bool {
	if s == nil || !s.Valid() {
		return false
	}
	return !(p.PantryMeansUnset && *s == model.StoragePantry)
}
