package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no session")

type Identity struct {
	UserID     uuid.UUID
	Username   string
	SuperAdmin bool
}

type IdentityProvider struct {
	cfg *SessionConfig
}

func NewIdentityProvider(cfg *SessionConfig) *IdentityProvider {
	return &IdentityProvider{cfg: cfg}
}

// IssueToken signs a session token for the user.
func (p *IdentityProvider) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    p.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.cfg.Lifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("err signing session, %v", err)
	}
	return token, nil
}

// GetIdentity verifies the session token and returns the user it belongs to.
// Roles are not part of the token; they are resolved against the users table.
func (p *IdentityProvider) GetIdentity(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrNoSession
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(p.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.cfg.Issuer),
		jwt.WithLeeway(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("identity can't be retrieved, %v", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid session subject, %v", err)
	}

	return &Identity{UserID: userID}, nil
}
