package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cwrk-planet/chat-service/pkg/errs"
)

var (
	ErrInvalidToken = fmt.Errorf("invalid token: %w", errs.ErrUnauthorized)
	ErrExpiredToken = fmt.Errorf("token has expired: %w", errs.ErrUnauthorized)
)

// Claims: sub — id пользователя или сотрудника платформы.
type Claims struct {
	UserID string `json:"sub"`
	Name   string `json:"name,omitempty"`
	Kind   string `json:"kind,omitempty"` // user|employee
	jwt.RegisteredClaims
}

// Authenticator выпускает и проверяет HS256-токены.
type Authenticator struct {
	secretKey []byte
	issuer    string
	validity  time.Duration
}

func NewAuthenticator(secretKey, issuer string, validity time.Duration) *Authenticator {
	return &Authenticator{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		validity:  validity,
	}
}

func (a *Authenticator) GenerateToken(userID, name, kind string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("generate token: empty subject: %w", errs.ErrInvalidInput)
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
}

func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secretKey, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
