package model

import "time"

// Category 食材分類
type Category string

const (
	CategoryProduce  Category = "produce"
	CategoryDairy    Category = "dairy"
	CategoryMeat     Category = "meat"
	CategoryPackaged Category = "packaged"
	CategoryFrozen   Category = "frozen"
	CategoryOther    Category = "other"
)

// Categories 所有合法分類
var Categories = []Category{
	CategoryProduce, CategoryDairy, CategoryMeat, CategoryPackaged, CategoryFrozen, CategoryOther,
}

// Valid 檢查分類是否合法
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// StorageCondition 保存方式
type StorageCondition string

const (
	StoragePantry       StorageCondition = "pantry"
	StorageRefrigerated StorageCondition = "refrigerated"
	StorageFrozen       StorageCondition = "frozen"
	StorageRoomTemp     StorageCondition = "room_temp"
)

// DefaultStorage 未指定保存方式時的預設值
const DefaultStorage = StoragePantry

// StorageConditions 所有合法保存方式
var StorageConditions = []StorageCondition{
	StoragePantry, StorageRefrigerated, StorageFrozen, StorageRoomTemp,
}

// Valid 檢查保存方式是否合法
func (s StorageCondition) Valid() bool {
	for _, v := range StorageConditions {
		if s == v {
			return true
		}
	}
	return false
}

// RecommendedUnits 建議使用的單位
var RecommendedUnits = []string{"each", "lbs", "oz", "kg", "g", "gallon", "liter"}

const (
	// DefaultUnit 預設單位
	DefaultUnit = "each"
	// DefaultState 預設狀態
	DefaultState = "raw"
	// FallbackEmoji 通用圖示
	FallbackEmoji = "🍽️"
)

// FoodItem 庫存中的食材
// ExpirationDate 為零值代表儲存的日期無法解析
type FoodItem struct {
	ID               string           `json:"id" bson:"id" validate:"required"`
	Name             string           `json:"name" bson:"name" validate:"required"`
	Category         Category         `json:"category" bson:"category" validate:"required,oneof=produce dairy meat packaged frozen other"`
	Quantity         float64          `json:"quantity" bson:"quantity" validate:"gte=0"`
	Unit             string           `json:"unit" bson:"unit"`
	StorageCondition StorageCondition `json:"storage_condition" bson:"storage_condition" validate:"required,oneof=pantry refrigerated frozen room_temp"`
	PurchaseDate     time.Time        `json:"purchase_date" bson:"purchase_date"`
	ExpirationDate   time.Time        `json:"expiration_date" bson:"expiration_date"`
	ShelfLifeDays    int              `json:"shelf_life_days" bson:"shelf_life_days" validate:"gte=0"`
	CurrentState     string           `json:"current_state" bson:"current_state"`
	Notes            *string          `json:"notes" bson:"notes,omitempty"`
	Emoji            *string          `json:"emoji" bson:"emoji,omitempty"`
	StorageTips      *string          `json:"storage_tips" bson:"storage_tips,omitempty"`
	CreatedAt        time.Time        `json:"created_at" bson:"created_at"`
}
