package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIssuedTokenResolvesToSameUser(t *testing.T) {
	p := NewIdentityProvider(&SessionConfig{Secret: "s3cret", Lifetime: time.Hour, Issuer: "test"})
	userID := uuid.New()

	token, err := p.IssueToken(userID)
	require.NoError(t, err)

	identity, err := p.GetIdentity(token)
	require.NoError(t, err)
	require.Equal(t, userID, identity.UserID)
	require.False(t, identity.SuperAdmin)
}

func TestGetIdentityRejectsForeignSignature(t *testing.T) {
	issuer := NewIdentityProvider(&SessionConfig{Secret: "one", Lifetime: time.Hour, Issuer: "test"})
	verifier := NewIdentityProvider(&SessionConfig{Secret: "two", Lifetime: time.Hour, Issuer: "test"})

	token, err := issuer.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = verifier.GetIdentity(token)
	require.Error(t, err)
}

func TestGetIdentityRejectsExpiredToken(t *testing.T) {
	p := NewIdentityProvider(&SessionConfig{Secret: "s3cret", Lifetime: -time.Hour, Issuer: "test"})

	token, err := p.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = p.GetIdentity(token)
	require.Error(t, err)
}

func TestGetIdentityWithoutTokenIsNoSession(t *testing.T) {
	p := NewIdentityProvider(&SessionConfig{Secret: "s3cret", Issuer: "test"})

	_, err := p.GetIdentity("")
	require.ErrorIs(t, err, ErrNoSession)
}
