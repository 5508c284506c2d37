package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	v := NewJWTValidator("secret")
	token, err := v.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	userID, err := v.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	v := NewJWTValidator("secret")
	token, err := v.IssueToken("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTValidator("other").IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTValidator("secret").ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTValidator("secret").ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWithoutSecret(t *testing.T) {
	_, err := NewJWTValidator("").ValidateToken(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
