package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc, err := NewTokenService("", 0)
	require.NoError(t, err)

	token, err := svc.Issue("range-master", true)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "JWT из трёх частей")

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "range-master", claims.Operator)
	assert.True(t, claims.IsAdmin)
}

func TestTokenService_RejectsForeignAndExpired(t *testing.T) {
	a, err := NewTokenService("", time.Minute)
	require.NoError(t, err)
	b, err := NewTokenService("", time.Minute)
	require.NoError(t, err)

	token, err := a.Issue("op", false)
	require.NoError(t, err)
	_, err = b.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "чужой ключ")

	a.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = a.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "истёкший токен")

	_, err = a.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Secret(t *testing.T) {
	secret, err := GenerateSecureSecret()
	require.NoError(t, err)

	a, err := NewTokenService(secret, 0)
	require.NoError(t, err)
	b, err := NewTokenService(secret, 0)
	require.NoError(t, err)

	token, err := a.Issue("op", false)
	require.NoError(t, err)
	_, err = b.Validate(token)
	assert.NoError(t, err, "общий ключ")

	_, err = NewTokenService("c2hvcnQ=", 0)
	assert.ErrorIs(t, err, ErrShortSecret)
	_, err = NewTokenService("%%%", 0)
	assert.Error(t, err)
}

func TestOperator_Authenticate(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	op := Operator{Name: "admin", PasswordHash: hash}
	assert.True(t, op.Authenticate("admin", "s3cret"))
	assert.False(t, op.Authenticate("admin", "wrong"))
	assert.False(t, op.Authenticate("root", "s3cret"))
	assert.False(t, Operator{Name: "admin"}.Authenticate("admin", ""), "без хэша вход отключён")
}
