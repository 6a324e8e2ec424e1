package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithCause 複製預定義錯誤並附上原始錯誤
func (e *CustomError) WithCause(err error) *CustomError {
	ce := *e
	ce.Err = err
	return &ce
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

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CorpusLoadError 食譜資料來源無法讀取或格式錯誤。啟動時遇到即為致命錯誤
type CorpusLoadError struct {
	Source string
	Err    error
}

func (e *CorpusLoadError) Error() string {
	return fmt.Sprintf("load recipe corpus from %s: %v", e.Source, e.Err)
}

func (e *CorpusLoadError) Unwrap() error {
	return e.Err
}

// NewCorpusLoadError 包裝資料來源錯誤
func NewCorpusLoadError(source string, err error) error {
	return &CorpusLoadError{Source: source, Err: err}
}

// IsCorpusLoadError 檢查是否為資料來源錯誤
func IsCorpusLoadError(err error) bool {
	var ce *CorpusLoadError
	return errors.As(err, &ce)
}

// ErrIndexNotBuilt 在索引建立前呼叫 transform/rank
var ErrIndexNotBuilt = errors.New("recipe index not built")

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError  = "INTERNAL_ERROR"  // 500
	ErrCodeGatewayTimeout = "GATEWAY_TIMEOUT" // 504

	// 業務錯誤
	ErrCodeCorpusLoad    = "CORPUS_LOAD_FAILED"
	ErrCodeIndexNotBuilt = "INDEX_NOT_BUILT"
)

// 預定義錯誤
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError   = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrGatewayTimeout  = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)
	ErrCacheFull       = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheMiss       = NewError("CACHE_MISS", "緩存未命中", http.StatusNotFound, nil)
)

// ToCustomError 將任意錯誤對應到 API 錯誤
func ToCustomError(err error) *CustomError {
	var ce *CustomError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return ce
	case IsValidationError(err):
		ce = ErrInvalidRequest.WithCause(err)
		ce.Message = err.Error()
		return ce
	case errors.Is(err, ErrIndexNotBuilt):
		return NewError(ErrCodeIndexNotBuilt, "食譜索引尚未建立", http.StatusServiceUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrGatewayTimeout.WithCause(err)
	case IsCorpusLoadError(err):
		return NewError(ErrCodeCorpusLoad, "食譜資料載入失敗", http.StatusServiceUnavailable, err)
	default:
		return ErrInternalError.WithCause(err)
	}
}
