package errors

import (
	"fmt"
	"time"
)

// ErrorType 错误类型枚举
type ErrorType string

const (
	// 系统级错误
	ErrorTypeSystem   ErrorType = "SYSTEM"
	ErrorTypeDatabase ErrorType = "DATABASE"
	ErrorTypeConfig   ErrorType = "CONFIG"

	// 业务级错误
	ErrorTypeBusiness   ErrorType = "BUSINESS"
	ErrorTypeValidation ErrorType = "VALIDATION"

	// 推荐引擎错误
	ErrorTypeRecommend ErrorType = "RECOMMEND"
)

// ErrorCode 错误码
type ErrorCode string

const (
	// 系统错误码 (E1xxx)
	ErrCodeSystemGeneric   ErrorCode = "E1000"
	ErrCodeDatabaseConnect ErrorCode = "E1001"
	ErrCodeDatabaseQuery   ErrorCode = "E1002"
	ErrCodeConfigMissing   ErrorCode = "E1004"
	ErrCodeConfigInvalid   ErrorCode = "E1005"

	// 业务错误码 (E2xxx)
	ErrCodeValidationFailed ErrorCode = "E2001"
	ErrCodeResourceNotFound ErrorCode = "E2002"
	ErrCodeInvalidInput     ErrorCode = "E2004"

	// 推荐引擎错误码 (E3xxx)
	ErrCodeRecommendFailed ErrorCode = "E3001"
)

// CoursehubError 统一错误结构
type CoursehubError struct {
	Type      ErrorType   `json:"type"`
	Code      ErrorCode   `json:"code"`
	Message   string      `json:"message"`
	Details   string      `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Context   interface{} `json:"context,omitempty"`
	Cause     error       `json:"-"` // 原始错误，不序列化
}

// Error 实现error接口
func (e *CoursehubError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s - %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap 支持错误链
func (e *CoursehubError) Unwrap() error {
	return e.Cause
}

// NewCoursehubError 创建新的Coursehub错误
func NewCoursehubError(errorType ErrorType, code ErrorCode, message string) *CoursehubError {
	return &CoursehubError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithDetails 添加详细信息
func (e *CoursehubError) WithDetails(details string) *CoursehubError {
	e.Details = details
	return e
}

// WithContext 添加上下文信息
func (e *CoursehubError) WithContext(context interface{}) *CoursehubError {
	e.Context = context
	return e
}

// WithCause 添加原始错误
func (e *CoursehubError) WithCause(cause error) *CoursehubError {
	e.Cause = cause
	return e
}

// IsType 检查错误类型
func (e *CoursehubError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// IsCode 检查错误码
func (e *CoursehubError) IsCode(code ErrorCode) bool {
	return e.Code == code
}

// 预定义常用错误

// ErrDatabaseConnection 数据库连接错误
func ErrDatabaseConnection(details string, cause error) *CoursehubError {
	return NewCoursehubError(ErrorTypeDatabase, ErrCodeDatabaseConnect, "Failed to connect to database").
		WithDetails(details).
		WithCause(cause)
}

// ErrDatabaseQuery 数据库查询错误
func ErrDatabaseQuery(details string, cause error) *CoursehubError {
	return NewCoursehubError(ErrorTypeDatabase, ErrCodeDatabaseQuery, "Database query failed").
		WithDetails(details).
		WithCause(cause)
}

// ErrValidationFailed 验证失败错误
func ErrValidationFailed(field, reason string) *CoursehubError {
	return NewCoursehubError(ErrorTypeValidation, ErrCodeValidationFailed, "Validation failed").
		WithDetails(fmt.Sprintf("Field '%s': %s", field, reason))
}

// ErrConfigMissing 配置缺失错误
func ErrConfigMissing(configKey string) *CoursehubError {
	return NewCoursehubError(ErrorTypeConfig, ErrCodeConfigMissing, "Required configuration missing").
		WithDetails(fmt.Sprintf("Missing config key: %s", configKey))
}

// ErrConfigInvalid 配置无效错误
func ErrConfigInvalid(configKey, reason string) *CoursehubError {
	return NewCoursehubError(ErrorTypeConfig, ErrCodeConfigInvalid, "Invalid configuration").
		WithDetails(fmt.Sprintf("Config key '%s': %s", configKey, reason))
}

// ErrResourceNotFound 资源未找到错误
func ErrResourceNotFound(resourceType, resourceID string) *CoursehubError {
	return NewCoursehubError(ErrorTypeBusiness, ErrCodeResourceNotFound, "Resource not found").
		WithDetails(fmt.Sprintf("%s with ID '%s' not found", resourceType, resourceID))
}

// ErrRecommendFailed 推荐计算错误
func ErrRecommendFailed(details string, cause error) *CoursehubError {
	return NewCoursehubError(ErrorTypeRecommend, ErrCodeRecommendFailed, "Recommendation failed").
		WithDetails(details).
		WithCause(cause)
}
