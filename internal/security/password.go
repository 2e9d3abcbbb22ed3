package security

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt work factor used for every stored password.
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &PasswordHasher{cost: cost}
}

// Hash generates a fresh salt and returns a bcrypt digest embedding salt and cost.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plain matches digest. A malformed digest is a mismatch.
func (h *PasswordHasher) Verify(plain, digest string) bool {
	if digest == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
