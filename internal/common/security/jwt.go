package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenAuth issues and verifies bearer tokens. One instance is built from
// config at startup and injected wherever tokens are handled.
type TokenAuth struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenAuth(key []byte, exp time.Duration) *TokenAuth {
	return &TokenAuth{
		auth: jwtauth.New("HS256", key, nil),
		exp:  exp,
	}
}

// Verifier exposes the underlying authority for the chi jwtauth middleware.
func (t *TokenAuth) Verifier() *jwtauth.JWTAuth {
	return t.auth
}

func (t *TokenAuth) GenerateToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(t.exp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
