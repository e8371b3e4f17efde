package model

// 建議無法取得時使用的預設值
const (
	DefaultShelfLifeDays = 7
	FallbackStorageTip   = "Store in a cool, dry place"
)

// Advice 經過正規化的食材建議，所有欄位都保證合法
type Advice struct {
	Category              Category         `json:"category"`
	ShelfLifeDays         int              `json:"shelf_life_days"`
	StorageRecommendation StorageCondition `json:"storage_recommendation"`
	Emoji                 string           `json:"emoji"`
	StorageTips           string           `json:"storage_tips"`
	// Fallback 為 true 表示使用了預設建議
	Fallback bool `json:"-"`
}

// FallbackAdvice 建議服務失敗時的固定建議
func FallbackAdvice(hint Category, storage StorageCondition) Advice {
	if !hint.Valid() {
		hint = CategoryOther
	}
	if !storage.Valid() {
		storage = DefaultStorage
	}
	return Advice{
		Category:              hint,
		ShelfLifeDays:         DefaultShelfLifeDays,
		StorageRecommendation: storage,
		Emoji:                 FallbackEmoji,
		StorageTips:           FallbackStorageTip,
		Fallback:              true,
	}
}
