package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"assessment-service/internal/apperr"
)

// Resolver maps a bearer token to a user id. Token issuance and refresh
// live in the auth service; this side only verifies.
type Resolver struct {
	secretKey []byte
}

func NewResolver(jwtSecret string) *Resolver {
	return &Resolver{secretKey: []byte(jwtSecret)}
}

func (r *Resolver) ResolveUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return r.secretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", apperr.Validation(apperr.CodeInvalidToken, "invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", apperr.Validation(apperr.CodeInvalidToken, "token has no subject")
	}
	return sub, nil
}
