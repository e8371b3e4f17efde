package advisory

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// Normalize 將模型輸出轉為合法的建議
// 任何錯誤（呼叫失敗、解析失敗、缺少欄位、panic）都改用預設建議，不會返回錯誤
func Normalize(raw string, callErr error, hint model.Category, storage model.StorageCondition) (advice model.Advice) {
	fallback := model.FallbackAdvice(hint, storage)

	defer func() {
		if r := recover(); r != nil {
			common.LogError("Advisory normalizer recovered from panic", zap.Any("panic", r))
			advice = fallback
		}
	}()

	if callErr != nil {
		common.LogWarn("Advisory unavailable, using fallback", zap.Error(callErr))
		return fallback
	}

	fields := map[string]interface{}{}
	if err := common.ParseModelJSON(raw, &fields); err != nil {
		common.LogWarn("Failed to parse advisory, using fallback", zap.Error(err))
		return fallback
	}

	if key := missingField(fields); key != "" {
		common.LogWarn("Advisory missing field, using fallback", zap.String("field", key))
		return fallback
	}

	advice = model.Advice{
		Category:              model.Category(strings.ToLower(stringField(fields, "category"))),
		StorageRecommendation: model.StorageCondition(strings.ToLower(stringField(fields, "storage_recommendation"))),
		Emoji:                 strings.TrimSpace(stringField(fields, "emoji")),
		StorageTips:           strings.TrimSpace(firstString(fields, "tips", "storage_tips")),
	}

	// 個別修正不合法的欄位
	if !advice.Category.Valid() {
		advice.Category = fallback.Category
	}
	if days, ok := positiveInt(fields["shelf_life_days"]); ok {
		advice.ShelfLifeDays = days
	} else {
		advice.ShelfLifeDays = fallback.ShelfLifeDays
	}
	if !advice.StorageRecommendation.Valid() {
		advice.StorageRecommendation = fallback.StorageRecommendation
	}
	if advice.Emoji == "" {
		advice.Emoji = fallback.Emoji
	}
	if advice.StorageTips == "" {
		advice.StorageTips = fallback.StorageTips
	}
	return advice
}

// requiredAdviceFields 建議內容必須包含的欄位
var requiredAdviceFields = []string{"category", "shelf_life_days", "storage_recommendation"}

func missingField(fields map[string]interface{}) string {
	for _, key := range requiredAdviceFields {
		if _, ok := fields[key]; !ok {
			return key
		}
	}
	return ""
}

// ValidAdvice 模型輸出可解析且包含必要欄位才可寫入快取
func ValidAdvice(raw string) bool {
	fields := map[string]interface{}{}
	if err := common.ParseModelJSON(raw, &fields); err != nil {
		return false
	}
	return missingField(fields) == ""
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func firstString(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := stringField(fields, k); s != "" {
			return s
		}
	}
	return ""
}

// positiveInt 接受數字或數字字串，小數向下取整
func positiveInt(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Floor(f)), true
}
