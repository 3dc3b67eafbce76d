package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// AccessClaims — содержимое access-токена.
type AccessClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity возвращает данные пользователя из токена.
func (c *AccessClaims) Identity() models.Identity {
	return models.Identity{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}
}

// RefreshClaims — содержимое refresh-токена.
type RefreshClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Issue выпускает пару токенов для пользователя.
func (j *MakerImpl) Issue(user models.User) (models.TokenPair, error) {
	const op = "jwt.Issue"
	now := j.now()

	access := AccessClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Role:             user.Role,
		RegisteredClaims: j.registered(now, j.accessTTL),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(j.accessSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	refresh := RefreshClaims{
		UserID:           user.ID,
		RegisteredClaims: j.registered(now, j.refreshTTL),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(j.refreshSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess проверяет подпись и срок access-токена.
func (j *MakerImpl) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	const op = "jwt.VerifyAccess"
	claims := &AccessClaims{}
	if err := j.parse(tokenStr, claims, j.accessSecret); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidToken, err)
	}
	return claims, nil
}

// VerifyRefresh проверяет подпись и срок refresh-токена.
func (j *MakerImpl) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	const op = "jwt.VerifyRefresh"
	claims := &RefreshClaims{}
	if err := j.parse(tokenStr, claims, j.refreshSecret); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidToken, err)
	}
	return claims, nil
}

func (j *MakerImpl) registered(issued time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
}

func (j *MakerImpl) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
