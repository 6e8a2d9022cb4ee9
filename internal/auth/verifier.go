package auth

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/ports"
)

type accessClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// RS256Verifier validates access tokens signed by the identity service.
// Only RS256 signatures from the configured issuer are accepted.
type RS256Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

func NewRS256Verifier(publicKeyPEM []byte, issuer string) (*RS256Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse jwt public key: %w", err)
	}
	return &RS256Verifier{publicKey: key, issuer: issuer}, nil
}

func (v *RS256Verifier) Verify(tokenStr string) (ports.Identity, error) {
	claims := new(accessClaims)
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return v.publicKey, nil },
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return ports.Identity{}, apperr.Unauthorized("invalid token", err)
	}
	if !token.Valid {
		return ports.Identity{}, apperr.Unauthorized("invalid token", nil)
	}
	if claims.Subject == "" {
		return ports.Identity{}, apperr.Unauthorized("token missing subject", nil)
	}

	return ports.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}
