package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"food-manager/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate 驗證食材欄位，錯誤以 ValidationError 返回
func (f *FoodItem) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return common.NewValidationError("invalid food item: " + strings.Join(msgs, ", "))
		}
		return common.NewValidationError(err.Error())
	}
	if strings.TrimSpace(f.Name) == "" {
		return common.NewValidationError("name must not be empty")
	}
	if !f.ExpirationDate.IsZero() && f.ExpirationDate.Before(f.PurchaseDate) {
		return common.NewValidationError("expiration_date must not be before purchase_date")
	}
	return nil
}

// 支援的時間格式：RFC3339、無時區 ISO（視為 UTC）與純日期
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp 解析時間字串，一律轉為 UTC
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, common.NewValidationError("timestamp must not be empty")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, common.NewValidationError(fmt.Sprintf("invalid timestamp %q, use ISO-8601 or YYYY-MM-DD", raw))
}
