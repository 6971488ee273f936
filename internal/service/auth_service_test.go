package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceHostLogin(t *testing.T) {
	t.Setenv("HOST_USERNAME", "gardener")
	t.Setenv("HOST_PASSWORD", "fern-secret")
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService()

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login("gardener", "fern-secret")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.HostID)

		claims, err := svc.ValidateHostToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.HostID, claims.HostID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("gardener", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateHostToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthServiceSessionToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService()

	token, err := svc.GenerateSessionToken("session-1", "visitor-1")
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "visitor-1", claims.VisitorID)

	// session tokens are not host tokens; a session token presented as a
	// host token parses but carries no host id
	hostClaims, err := svc.ValidateHostToken(token)
	if err == nil {
		assert.Empty(t, hostClaims.HostID)
	}
}
