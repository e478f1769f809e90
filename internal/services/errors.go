package services

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskForbidden は他のユーザーのタスクを操作しようとした場合のエラーです。
	ErrTaskForbidden = errors.New("task belongs to another user")
	// ErrInvalidCredentials はログインに失敗した場合のエラーです。どちらが誤りかは区別しません。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalid はトークンまたはセッションが無効な場合のエラーです。
	ErrSessionInvalid = errors.New("invalid or expired session")
)

// ValidationError は入力値が不正な場合のエラーです。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
