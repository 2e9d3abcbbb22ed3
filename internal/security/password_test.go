package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash_SaltedDigestsBothVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("password123")
	require.NoError(t, err)

	second, err := h.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password should produce different digests")
	assert.NotEqual(t, "password123", first)
	assert.True(t, h.Verify("password123", first))
	assert.True(t, h.Verify("password123", second))
}

func TestVerify_WrongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("password123")
	require.NoError(t, err)

	assert.False(t, h.Verify("password124", digest))
}

func TestVerify_MalformedDigestIsMismatch(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "not-a-bcrypt-hash", "$2a$10$short"} {
		assert.False(t, h.Verify("password123", digest), "digest %q", digest)
	}
}

func TestNewPasswordHasher_OutOfRangeCostFallsBack(t *testing.T) {
	h := NewPasswordHasher(0)

	digest, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}
