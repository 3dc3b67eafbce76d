// Package jwt реализует выпуск и проверку пары JWT токенов.
//
// Access-токен живёт недолго и содержит id, email и роль пользователя.
// Refresh-токен живёт дольше, содержит только id и используется лишь для
// получения новой пары. Токены подписываются разными секретами и нигде
// не хранятся: их валидность определяется только подписью и сроком действия.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Maker описывает интерфейс для выпуска и проверки токенов.
type Maker interface {
	// Issue выпускает пару access/refresh для пользователя.
	Issue(user models.User) (models.TokenPair, error)
	// VerifyAccess проверяет access-токен.
	VerifyAccess(token string) (*AccessClaims, error)
	// VerifyRefresh проверяет refresh-токен.
	VerifyRefresh(token string) (*RefreshClaims, error)
}

// MakerImpl реализует Maker на HMAC-SHA256.
type MakerImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTMaker создаёт MakerImpl с раздельными секретами и сроками жизни.
func NewJWTMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock подменяет источник времени для выпуска и проверки.
func (j *MakerImpl) WithClock(now func() time.Time) *MakerImpl {
	j.now = now
	return j
}
