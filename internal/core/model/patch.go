package model

// FoodPatch 食材部分更新，nil 代表不變更
// 日期以字串傳入，由服務層解析
type FoodPatch struct {
	Name             *string           `json:"name,omitempty"`
	Category         *Category         `json:"category,omitempty"`
	Quantity         *float64          `json:"quantity,omitempty"`
	Unit             *string           `json:"unit,omitempty"`
	StorageCondition *StorageCondition `json:"storage_condition,omitempty"`
	PurchaseDate     *string           `json:"purchase_date,omitempty"`
	ExpirationDate   *string           `json:"expiration_date,omitempty"`
	CurrentState     *string           `json:"current_state,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Emoji            *string           `json:"emoji,omitempty"`
	StorageTips      *string           `json:"storage_tips,omitempty"`
}

// IsEmpty 沒有任何欄位需要更新
func (p FoodPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Quantity == nil && p.Unit == nil &&
		p.StorageCondition == nil && p.PurchaseDate == nil && p.ExpirationDate == nil &&
		p.CurrentState == nil && p.Notes == nil && p.Emoji == nil && p.StorageTips == nil
}

// TouchesExpiration 是否會改變到期時間
func (p FoodPatch) TouchesExpiration() bool {
	return p.ExpirationDate != nil || p.PurchaseDate != nil
}
