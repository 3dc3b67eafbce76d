// Package models содержит доменные структуры сервиса подписок: пользователей,
// тарифные планы, подписки, события жизненного цикла и ошибки предметной области.
package models

import "time"

const (
	// RoleUser — роль обычного пользователя.
	RoleUser = "user"
	// RoleAdmin — роль администратора.
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity — данные пользователя, извлечённые из access-токена.
// Роль является снимком на момент выпуска токена и не перечитывается из хранилища.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}

// TokenPair — пара токенов, выдаваемая при регистрации, входе и обновлении.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ValidRole сообщает, является ли строка известной ролью.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Identity возвращает данные пользователя, которые попадают в access-токен.
func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}
