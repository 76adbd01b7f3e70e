package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)

	token, err := m.Issue(42, KindUser, 3)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)

	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, KindUser, claims.Kind)
	assert.Equal(t, uint(3), claims.RoleID)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Issue(1, KindCustomer, 0)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Minute).Issue(1, KindCustomer, 0)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func TestHashPasswordRejectsOverlongSecret(t *testing.T) {
	// bcrypt caps input at 72 bytes; the error must surface so callers
	// never persist an empty hash.
	hash, err := HashPassword(strings.Repeat("a", 100))
	require.Error(t, err)
	assert.Empty(t, hash)
}
