package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"busline/internal/response"
)

// RoleAdmin: роль, которой разрешено менять расписание.
const RoleAdmin = "admin"

// AuthMiddleware проверяет access токен (HS256) и наличие нужной роли в claim "role".
// Токены выпускает внешний сервис авторизации.
func AuthMiddleware(secret []byte, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "NO_AUTH_HEADER",
				Message: "Требуется авторизация",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("неожиданный алгоритм подписи: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Неверный или просроченный токен",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN_CLAIMS",
				Message: "Невозможно прочитать claims токена",
			})
			return
		}

		if got, _ := claims["role"].(string); got != role {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "Недостаточно прав",
			})
			return
		}

		if userID, ok := claims["user_id"].(float64); ok {
			c.Set("userID", uint(userID))
		}
		c.Next()
	}
}

// AdminMiddleware: AuthMiddleware для роли admin.
func AdminMiddleware(secret []byte) gin.HandlerFunc {
	return AuthMiddleware(secret, RoleAdmin)
}
