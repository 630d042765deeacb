package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyValidToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"userId": float64(42),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	userID, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestVerifySubjectClaim(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"userId": float64(42),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	token := signToken(t, "other-secret", jwt.MapClaims{
		"userId": float64(42),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	_, err := verifier.Verify(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingUserClaim(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromCookieHeader(t *testing.T) {
	token, err := TokenFromCookieHeader("foo=bar; token=abc123; other=x")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestTokenFromCookieHeaderMissing(t *testing.T) {
	_, err := TokenFromCookieHeader("foo=bar")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = TokenFromCookieHeader("")
	assert.ErrorIs(t, err, ErrNoToken)
}
