package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

var _ driven.IdentityVerifier = (*Adapter)(nil)

// Adapter issues and validates HS256 bearer tokens whose subject is the user id.
type Adapter struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewAdapter creates a bearer token adapter with the given JWT secret.
func NewAdapter(jwtSecret string) *Adapter {
	return &Adapter{jwtSecret: []byte(jwtSecret), now: time.Now}
}

// GenerateToken signs a bearer token for userID valid for ttl.
func (a *Adapter) GenerateToken(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", domain.ErrInvalidInput)
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

// UserIDFromToken validates a bearer token and returns its subject.
// State tokens from the authorization handshake are refused.
func (a *Adapter) UserIDFromToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, a.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if slices.Contains(claims.Audience, stateAudience) {
		return "", fmt.Errorf("%w: state token used as bearer", domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (a *Adapter) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return a.jwtSecret, nil
}
