package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T, secret string) *Tokens {
	t.Helper()
	tk, err := NewTokens(secret, "ledger-test", time.Hour)
	require.NoError(t, err)
	return tk
}

func TestIssueAndParse(t *testing.T) {
	tk := newTestTokens(t, "secret")
	raw, exp, err := tk.Issue("u1", "u1@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tk.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.Equal(t, "ledger-test", claims.Issuer)
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("", "x", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	raw, _, err := newTestTokens(t, "secret-a").Issue("u1", "")
	require.NoError(t, err)
	_, err = newTestTokens(t, "secret-b").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tk := newTestTokens(t, "secret")
	tk.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := tk.Issue("u1", "")
	require.NoError(t, err)

	tk.now = time.Now
	_, err = tk.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherIssuer(t *testing.T) {
	a, err := NewTokens("secret", "issuer-a", time.Hour)
	require.NoError(t, err)
	b, err := NewTokens("secret", "issuer-b", time.Hour)
	require.NoError(t, err)

	raw, _, err := a.Issue("u1", "")
	require.NoError(t, err)
	_, err = b.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	tk := newTestTokens(t, "secret")
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tk.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	tk := newTestTokens(t, "secret")
	raw, _, err := tk.Issue("", "x@example.com")
	require.NoError(t, err)
	_, err = tk.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = BearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
