package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_IssueVerify(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("super-secret", time.Hour)
	tok, err := iss.Issue("user-123")
	require.NoError(t, err)

	sub, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestIssuer_TokensAreNotIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	iss := NewIssuer("k", time.Hour, WithClock(fixedClock(now)))
	a, err := iss.Issue("u1")
	require.NoError(t, err)
	b, err := iss.Issue("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssuer_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-2 * time.Hour)
	tok, err := NewIssuer("secret", time.Hour, WithClock(fixedClock(issued))).Issue("u1")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_ExpiryBoundaryFollowsClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tok, err := NewIssuer("secret", time.Minute, WithClock(fixedClock(start))).Issue("u1")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute, WithClock(fixedClock(start.Add(30*time.Second)))).Verify(tok)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute, WithClock(fixedClock(start.Add(2*time.Minute)))).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret", time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewIssuer("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestIssuer_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{
		Subject:   "u3",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSignatureMismatch) || errors.Is(err, ErrTokenMalformed), "got %v", err)
}

func TestIssuer_Malformed(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("k", time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := iss.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, raw)
	}
}

func TestIssuer_MissingSubject(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("k", time.Hour).Issue("")
	require.NoError(t, err)

	_, err = NewIssuer("k", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
