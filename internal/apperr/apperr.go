// Package apperr 定义业务错误分类及其 HTTP 状态码映射。
package apperr

import (
	"errors"
	"net/http"
)

// Kind 错误类别。
type Kind string

const (
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindValidation        Kind = "VALIDATION"
	KindConflict          Kind = "CONFLICT"
	KindInternal          Kind = "INTERNAL"
)

// Error 携带类别、面向用户的消息与底层原因。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New 构造错误。
func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg, nil) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg, nil) }
func Validation(msg string) *Error   { return New(KindValidation, msg, nil) }
func Conflict(msg string) *Error     { return New(KindConflict, msg, nil) }

// Internal 包装意外错误，消息对外统一。
func Internal(msg string, err error) *Error { return New(KindInternal, msg, err) }

// KindOf 返回错误链上第一个 *Error 的类别，未分类错误视为 Internal。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定类别。
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// HTTPStatus 将错误映射为 HTTP 状态码。
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message 返回可展示给客户端的消息；未分类错误返回 fallback。
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Message != "" {
		return e.Message
	}
	return fallback
}
