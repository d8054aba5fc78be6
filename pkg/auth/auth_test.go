package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestManager_GenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Generate("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// expiration is exactly ttl after issuance
	issued := claims.IssuedAt.Time
	expires := claims.ExpiresAt.Time
	assert.Equal(t, time.Hour, expires.Sub(issued))
}

func TestManager_ExpiredToken(t *testing.T) {
	expired := NewManager("test-secret", -2*time.Hour)

	token, err := expired.Generate("alice")
	require.NoError(t, err)

	m := NewManager("test-secret", time.Hour)
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_InvalidToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// signed with a different secret
	other := NewManager("other-secret", time.Hour)
	token, err := other.Generate("alice")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
