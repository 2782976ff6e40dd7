package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "miaoyou-backend"

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshWindowPassed = errors.New("token is too old to refresh")
)

// Claims - полезная нагрузка access-токена
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager выпускает и проверяет HS256 токены
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	refreshWindow time.Duration
	now           func() time.Time
}

func NewJWTManager(secretKey string, tokenDuration, refreshWindow time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		refreshWindow: refreshWindow,
		now:           time.Now,
	}
}

func (m *JWTManager) TokenDuration() time.Duration { return m.tokenDuration }

// GenerateToken выпускает токен для пользователя
func (m *JWTManager) GenerateToken(userID, username, role string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateToken проверяет подпись и срок действия.
// Истекший, но правильно подписанный токен дает ErrTokenExpired.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString, jwt.WithTimeFunc(m.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	return claims, err
}

func (m *JWTManager) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken выпускает новый токен по старому. Истекший токен принимается,
// если с момента истечения прошло не больше refreshWindow.
func (m *JWTManager) RefreshToken(tokenString string) (string, error) {
	claims, err := m.parse(tokenString, jwt.WithTimeFunc(m.now), jwt.WithLeeway(m.refreshWindow))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrRefreshWindowPassed
		}
		return "", err
	}
	return m.GenerateToken(claims.UserID, claims.Username, claims.Role)
}

// ExtractTokenFromBearer достает токен из заголовка Authorization
func ExtractTokenFromBearer(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "

	if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", errors.New("authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(authHeader[len(bearerPrefix):]), nil
}
