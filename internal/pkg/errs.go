package pkg

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError 业务错误，带 HTTP 状态码，由 handler 统一映射
type StatusError struct {
	Status int
	Msg    string
}

func (e *StatusError) Error() string { return e.Msg }

func NotFound(format string, args ...any) error {
	return &StatusError{Status: http.StatusNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &StatusError{Status: http.StatusForbidden, Msg: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) error {
	return &StatusError{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// HTTPStatus 取错误对应的状态码；非业务错误（如驱动错误）一律 400
func HTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusBadRequest
}

// IsStatus 判断错误是否为指定状态码的业务错误
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
