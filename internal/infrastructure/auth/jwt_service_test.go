package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

func newTestJWTService() domain.TokenService {
	return NewJWTService("test-secret", "agrilink", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateAccessToken("u1", "retailer", "sess_1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "retailer", claims.Role)
	assert.Equal(t, "sess_1", claims.SessionID)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateRefreshToken("u1", "retailer", "sess_1")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "sess_1", claims.SessionID)
}

func TestTokensAreUnique(t *testing.T) {
	svc := newTestJWTService()

	a, err := svc.GenerateAccessToken("u1", "retailer", "sess_1")
	require.NoError(t, err)
	b, err := svc.GenerateAccessToken("u1", "retailer", "sess_1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "jti must make identical claims produce distinct tokens")
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("other-secret", "agrilink", time.Minute, time.Hour).
		GenerateAccessToken("u1", "retailer", "sess_1")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", "agrilink", -time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken("u1", "retailer", "sess_1")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}
