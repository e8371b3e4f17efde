package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// IDGenerator 產生唯一識別碼
type IDGenerator func() string

// Clock 提供「現在時間」，測試時可注入固定時間
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系統時間（UTC）
type SystemClock struct{}

// Now 返回目前 UTC 時間
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock 返回固定時間
type FixedClock struct {
	T time.Time
}

// Now 返回固定時間
func (c *FixedClock) Now() time.Time {
	return c.T
}

// Advance 將固定時間往後推
func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

// WriteError 依錯誤類型寫入 gin 錯誤響應
func WriteError(c *gin.Context, err error) {
	var ce *CustomError
	switch {
	case IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeInvalidRequest,
			Message: err.Error(),
		})
	case errors.As(err, &ce):
		c.JSON(ce.Status, ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    ErrCodeInternalError,
			Message: ErrInternalError.Message,
			Details: err.Error(),
		})
	}
}
