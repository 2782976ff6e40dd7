package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/pkg/apperrors"
	"miaoyou_backend/pkg/contextkeys"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtManager)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware заполняет контекст, если токен есть и валиден,
// и пропускает анонимные запросы.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if claims, err := claimsFromRequest(c, jwtManager); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := GetUserRole(c)
		if role == "" {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtManager *auth.JWTManager) (*auth.Claims, error) {
	tokenStr, err := auth.ExtractTokenFromBearer(c.GetHeader("Authorization"))
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Authorization header missing or invalid")
	}

	claims, err := jwtManager.ValidateToken(tokenStr)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, apperrors.ErrTokenExpired.WithError(err)
	}
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey, claims.UserID)
	c.Set(contextkeys.UserRoleKey, claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

func GetUserRole(c *gin.Context) string {
	return c.GetString(contextkeys.UserRoleKey)
}
