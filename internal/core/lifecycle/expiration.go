package lifecycle

import (
	"strings"
	"time"

	"food-manager/internal/core/model"
)

// CalculateExpiration 計算到期時間：購買時間加上保存天數
// 天數不為正數時使用預設的 7 天
func CalculateExpiration(purchase time.Time, shelfLifeDays int) time.Time {
	if shelfLifeDays <= 0 {
		shelfLifeDays = model.DefaultShelfLifeDays
	}
	return purchase.UTC().AddDate(0, 0, shelfLifeDays)
}

// ResolvePurchaseDate 解析購買時間，未提供時使用目前時間
func ResolvePurchaseDate(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return now.UTC(), nil
	}
	return model.ParseTimestamp(raw)
}
