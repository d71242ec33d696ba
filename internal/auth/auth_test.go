package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordHashAndVerify(t *testing.T) {
	ps := NewPasswordService(bcrypt.MinCost)

	hash, err := ps.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, ps.Verify(hash, "hunter22"))
	assert.ErrorIs(t, ps.Verify(hash, "wrong"), ErrInvalidPassword)
}

func TestPasswordTooLong(t *testing.T) {
	ps := NewPasswordService(bcrypt.MinCost)
	_, err := ps.Hash(string(make([]byte, 73)))
	assert.Error(t, err)
}

func TestTokenIssueAndValidate(t *testing.T) {
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	tok, issued, err := ts.Issue("user-1", "a@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := ts.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, issued.TokenID, claims.TokenID)
}

func TestTokenExpired(t *testing.T) {
	ts, err := NewTokenService(testSecret, time.Minute)
	require.NoError(t, err)
	tok, _, err := ts.Issue("user-1", "")
	require.NoError(t, err)

	ts.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = ts.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	a, _ := NewTokenService(testSecret, time.Hour)
	b, _ := NewTokenService("another-secret-of-enough-length", time.Hour)

	tok, _, err := a.Issue("user-1", "")
	require.NoError(t, err)
	_, err = b.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewTokenService("short", time.Hour)
	assert.Error(t, err)
}
