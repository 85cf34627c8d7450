package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSecret     = errors.New("JWT secret is not configured")
)

// Claims carried by every token issued by this service. EmailKey is the
// derived storage key, so handlers never re-derive it from the email.
type Claims struct {
	EmailKey string `json:"emailKey"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates access/refresh tokens.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a token manager. The secret must be non-empty.
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// GenerateAccessToken creates a short-lived access token.
func (m *JWTManager) GenerateAccessToken(emailKey, email string) (string, error) {
	return m.generate(emailKey, email, m.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (m *JWTManager) GenerateRefreshToken(emailKey, email string) (string, error) {
	return m.generate(emailKey, email, m.refreshTTL)
}

func (m *JWTManager) generate(emailKey, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		EmailKey: emailKey,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and verifies a token and returns its claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.EmailKey == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
