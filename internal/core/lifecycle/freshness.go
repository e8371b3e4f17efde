package lifecycle

import (
	"fmt"
	"math"
	"strings"
	"time"

	"food-manager/internal/pkg/common"
)

// Freshness 新鮮度分類
type Freshness string

const (
	Expired      Freshness = "expired"
	ExpiringSoon Freshness = "expiring_soon"
	Fresh        Freshness = "fresh"
)

const (
	// ListingSoonWindowDays 列表篩選的「即將到期」天數上限（含）
	ListingSoonWindowDays = 7
	// DashboardSoonWindow 儀表板的「即將到期」時間範圍
	DashboardSoonWindow = 72 * time.Hour
	// UnknownDaysLeft 到期時間無法解析時的剩餘天數
	UnknownDaysLeft = -1
)

// DaysLeft 剩餘天數，向下取整
func DaysLeft(expiration, now time.Time) int {
	if expiration.IsZero() {
		return UnknownDaysLeft
	}
	d := expiration.Sub(now)
	return int(math.Floor(float64(d) / float64(24*time.Hour)))
}

// Classify 依剩餘天數分類，到期時間未知視為已過期
func Classify(expiration, now time.Time) Freshness {
	if expiration.IsZero() {
		return Expired
	}
	days := DaysLeft(expiration, now)
	switch {
	case days < 0:
		return Expired
	case days <= ListingSoonWindowDays:
		return ExpiringSoon
	default:
		return Fresh
	}
}

// Filter 列表篩選條件
type Filter string

// FilterAll 不篩選
const FilterAll Filter = "all"

// ParseFilter 解析篩選參數，空值視為 all
func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FilterAll:
		return FilterAll, nil
	case Filter(Expired), Filter(ExpiringSoon), Filter(Fresh):
		return f, nil
	default:
		return "", common.NewValidationError(fmt.Sprintf("invalid filter %q, expected one of expired, expiring_soon, fresh, all", raw))
	}
}

// Matches 檢查到期時間是否符合篩選條件
func (f Filter) Matches(expiration, now time.Time) bool {
	if f == FilterAll || f == "" {
		return true
	}
	return Filter(Classify(expiration, now)) == f
}

// IsDashboardExpiringSoon 儀表板的即將到期：尚未過期且在 72 小時內
func IsDashboardExpiringSoon(expiration, now time.Time) bool {
	if expiration.IsZero() {
		return false
	}
	return DaysLeft(expiration, now) >= 0 && !expiration.After(now.Add(DashboardSoonWindow))
}

// IsExpired 到期時間早於目前時間或未知
func IsExpired(expiration, now time.Time) bool {
	return expiration.IsZero() || expiration.Before(now)
}
