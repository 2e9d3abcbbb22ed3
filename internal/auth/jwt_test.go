package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify_Success(t *testing.T) {
	m := NewManager("super-secret")

	tok, err := m.Issue("user-123", "sam@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "sam@example.com", claims.Email)
	assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_ExpiredAfter24Hours(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewManager("super-secret").WithClock(fixedClock(issuedAt))

	tok, err := m.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	_, err = m.WithClock(fixedClock(issuedAt.Add(23 * time.Hour))).Verify(tok)
	require.NoError(t, err)

	_, err = m.WithClock(fixedClock(issuedAt.Add(TokenTTL + time.Minute))).Verify(tok)
	require.ErrorIs(t, err, ErrExpiredToken)
	assert.False(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_CorruptedSignature(t *testing.T) {
	m := NewManager("super-secret")

	tok, err := m.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	_, err = m.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := NewManager("right-secret").Issue("u2", "u2@example.com")
	require.NoError(t, err)

	_, err = NewManager("wrong-secret").Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewManager("k").Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_BlankTokenIsInvalid(t *testing.T) {
	for _, tok := range []string{"", "  "} {
		_, err := NewManager("k").Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
		assert.False(t, errors.Is(err, ErrNoToken))
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "u3",
		Email:  "u3@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("k").Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiration(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u4", Email: "u4@example.com"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewManager("k").Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "extra spaces", header: "  Bearer   abc  ", want: "abc"},
		{name: "raw token", header: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "scheme only", header: "Bearer", want: ""},
		{name: "empty", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BearerToken(tt.header))
		})
	}
}
