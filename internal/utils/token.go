package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/waterline/internal/apperr"
)

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken creates a signed JWT carrying the customer ID and role.
// Access and refresh tokens use the same shape but distinct secrets, so a
// leaked access token cannot be replayed as a refresh token.
func SignToken(secret string, customerID uuid.UUID, role string, ttl time.Duration) (string, error) {
	claims := &tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded customer ID and
// role. Expired tokens and otherwise invalid tokens map to distinct
// unauthorized messages.
func ParseToken(secret, tokenString string) (uuid.UUID, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", apperr.Unauthorized("token expired")
		}
		return uuid.Nil, "", apperr.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", apperr.Unauthorized("invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", apperr.Unauthorized("invalid token")
	}

	return id, claims.Role, nil
}
