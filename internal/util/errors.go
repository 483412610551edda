package util

import (
	"errors"
	"fmt"
)

// 错误分类，控制器通过 errors.Is 映射 HTTP 状态码
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrMissingSession     = fmt.Errorf("no session: %w", ErrUnauthorized)
	ErrSessionExpired     = fmt.Errorf("session expired: %w", ErrUnauthorized)
	ErrRoleDenied         = fmt.Errorf("role not allowed: %w", ErrUnauthorized)

	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
	ErrClassNotFound = fmt.Errorf("class %w", ErrNotFound)
	ErrQuizNotFound  = fmt.Errorf("quiz %w", ErrNotFound)

	ErrUsernameTaken        = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrEmailRegistered      = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrAccountExists        = fmt.Errorf("account already exists: %w", ErrConflict)
	ErrClassCodeTaken       = fmt.Errorf("class code already in use: %w", ErrConflict)
	ErrQuizAlreadyCompleted = fmt.Errorf("quiz already completed: %w", ErrConflict)
)

// Invalid 构造带字段说明的校验错误
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
