package common

import (
	"errors"
	"net/http"
)

// ErrorResponse API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"error"`             // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// IsKind 檢查錯誤鏈中是否有指定代碼的 CustomError
func IsKind(err error, code string) bool {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE" // 413
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError = "INTERNAL_ERROR" // 500

	// 啟動與服務錯誤
	ErrCodeConfigurationMissing  = "CONFIGURATION_MISSING"
	ErrCodeDataUnavailable       = "DATA_UNAVAILABLE"
	ErrCodeServiceFailure        = "SERVICE_FAILURE"
	ErrCodeClassificationFailure = "CLASSIFICATION_FAILURE"
)

// ConfigurationMissing 缺少必要設定（例如 HF_TOKEN）
func ConfigurationMissing(message string) *CustomError {
	return NewError(ErrCodeConfigurationMissing, message, http.StatusInternalServerError, nil)
}

// DataUnavailable 資料來源無法讀取
func DataUnavailable(message string, err error) *CustomError {
	return NewError(ErrCodeDataUnavailable, message, http.StatusServiceUnavailable, err)
}

// ServiceFailure 生成服務呼叫失敗
func ServiceFailure(message string, err error) *CustomError {
	return NewError(ErrCodeServiceFailure, message, http.StatusBadGateway, err)
}

// ClassificationFailure 意圖分類呼叫失敗
func ClassificationFailure(err error) *CustomError {
	return NewError(ErrCodeClassificationFailure, "intent classification failed", http.StatusBadGateway, err)
}

// 預定義錯誤
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrRequestTooLarge = NewError(ErrCodeRequestTooLarge, "request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError   = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrCacheMiss       = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)
	ErrCacheFull       = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
)
