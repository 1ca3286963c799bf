// Package auth выдаёт и проверяет токены операторов REST API.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL - срок действия токена оператора
const DefaultTokenTTL = 24 * time.Hour

// issuerName - издатель токенов
const issuerName = "arrowsim"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrShortSecret  = errors.New("secret key must be at least 32 bytes")
)

// Claims represents JWT claims
type Claims struct {
	Operator string `json:"operator"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenService подписывает и проверяет токены HS256
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService создаёт сервис токенов.
// secret - ключ в base64 длиной от 32 байт; пустая строка - случайный ключ на время работы процесса.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	var key []byte
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	} else {
		decoded, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, err
		}
		if len(decoded) < 32 {
			return nil, ErrShortSecret
		}
		key = decoded
	}

	return &TokenService{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token for the operator
func (s *TokenService) Issue(operator string, isAdmin bool) (string, error) {
	now := s.now()
	claims := &Claims{
		Operator: operator,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuerName,
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks token validity and returns its claims
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuerName), jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateSecureSecret generates a new secure secret key
func GenerateSecureSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
