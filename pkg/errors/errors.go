// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 资源错误 (3xxx)
	CodePlotNotFound       ErrorCode = "3001"
	CodeAuthorNotFound     ErrorCode = "3002"
	CodeWorldNotFound      ErrorCode = "3003"
	CodeCharactersNotFound ErrorCode = "3004"
	CodeSessionNotFound    ErrorCode = "3005"

	// 业务错误 (4xxx)
	CodeGenerationFailed      ErrorCode = "4001"
	CodeValidationFailed      ErrorCode = "4002"
	CodePlanUnsatisfiable     ErrorCode = "4003"
	CodeUnknownAgent          ErrorCode = "4004"
	CodeMalformedPlan         ErrorCode = "4005"
	CodeLLMCallFailed         ErrorCode = "4006"
	CodeImprovementFailed     ErrorCode = "4007"
	CodeContentSearchFailed   ErrorCode = "4008"
	CodeDecisionPublishFailed ErrorCode = "4009"
	CodeUnknownTool           ErrorCode = "4010"

	// 外部服务错误 (5xxx)
	CodeDatabaseError    ErrorCode = "5001"
	CodeCacheError       ErrorCode = "5002"
	CodeVectorDBError    ErrorCode = "5003"
	CodeLLMProviderError ErrorCode = "5004"
	CodeEmbeddingFailed  ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodePlotNotFound, CodeAuthorNotFound, CodeWorldNotFound,
		CodeCharactersNotFound, CodeSessionNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrPlotNotFound    = New(CodePlotNotFound, "plot not found")
	ErrWorldNotFound   = New(CodeWorldNotFound, "world not found")
	ErrSessionNotFound = New(CodeSessionNotFound, "conversation session not found")

	ErrGenerationFailed  = New(CodeGenerationFailed, "content generation failed")
	ErrValidationFailed  = New(CodeValidationFailed, "validation failed")
	ErrUnknownAgent      = New(CodeUnknownAgent, "unknown agent")
	ErrMalformedPlan     = New(CodeMalformedPlan, "malformed workflow plan")
	ErrLLMCallFailed     = New(CodeLLMCallFailed, "LLM call failed")
	ErrPlanUnsatisfiable = New(CodePlanUnsatisfiable, "workflow plan unsatisfiable")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
