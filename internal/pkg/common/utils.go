package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// WriteError 以統一格式寫入錯誤響應
func WriteError(c *gin.Context, err *CustomError) {
	c.AbortWithStatusJSON(err.Status, ErrorResponse{
		Code:    err.Code,
		Message: err.Message,
	})
}

// MaskSecret 遮罩憑證，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
