// Package auth содержит регистрацию, вход и обновление пары токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/password"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его с ID.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или models.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по ID или models.ErrUserNotFound.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// PasswordHasher хэширует и сравнивает пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Result — пользователь и выданная ему пара токенов.
type Result struct {
	User models.User `json:"user"`
	models.TokenPair
}

// RegisterRequest — данные регистрации. Пустая роль означает models.RoleUser.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Service отвечает за регистрацию, вход и обновление токенов.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens jwt.Maker
	log    *slog.Logger
}

func NewService(users UserRepository, hasher PasswordHasher, tokens jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

// Register создаёт пользователя и выдаёт ему пару токенов.
// Занятый email возвращает models.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	const op = "auth.Register"

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("role", "must be one of user, admin"))
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hashed,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.Int64("user_id", user.ID), slog.String("role", user.Role))

	return s.issue(op, *user)
}

// Login проверяет пароль и выдаёт пару токенов. Неизвестный email и неверный
// пароль неразличимы для клиента: оба дают models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issue(op, *user)
}

// Refresh обменивает refresh-токен на новую пару.
// Пустой токен — models.ErrMissingToken, недействительный — models.ErrInvalidToken,
// удалённый пользователь — models.ErrUserNotFound.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "auth.Refresh"

	if strings.TrimSpace(refreshToken) == "" {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, models.ErrMissingToken)
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.tokens.Issue(*user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

func (s *Service) issue(op string, user models.User) (*Result, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = ""
	return &Result{User: user, TokenPair: pair}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
