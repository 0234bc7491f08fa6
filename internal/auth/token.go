package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken выпускает access токен HS256 с ролью. Используется для служебных
// администраторских токенов (cmd/seed -admin-token).
func GenerateToken(userID uint, role string, duration time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
