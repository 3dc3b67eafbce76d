package models

import (
	"errors"
	"fmt"
)

// Ошибки аутентификации и авторизации.
var (
	// ErrMissingToken — токен не передан.
	ErrMissingToken = errors.New("access token required")
	// ErrInvalidToken — подпись неверна или срок действия истёк.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden — недостаточно прав.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Базовые категории ошибок предметной области.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)

// Конкретные ошибки, сопоставляемые с базовыми через errors.Is.
var (
	ErrPlanNotFound         = fmt.Errorf("plan %w", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("subscription %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadySubscribed = &DomainError{Kind: ErrConflict, Msg: "you already have an active subscription"}
	ErrEmailTaken        = &DomainError{Kind: ErrConflict, Msg: "email already registered"}

	ErrNoActiveSubscription = &DomainError{Kind: ErrInvalidState, Msg: "no active subscription"}
	ErrNothingToCancel      = &DomainError{Kind: ErrInvalidState, Msg: "no active subscription to cancel"}
)

// DomainError — ошибка с категорией и сообщением для клиента.
type DomainError struct {
	Kind error
	Msg  string
}

// Error реализует интерфейс error.
func (e *DomainError) Error() string {
	return e.Msg
}

// Unwrap возвращает категорию ошибки.
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// ValidationError описывает некорректное поле запроса.
type ValidationError struct {
	Field  string
	Reason string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s %s", e.Field, e.Reason)
}

// NewValidationError создаёт ошибку валидации поля.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
