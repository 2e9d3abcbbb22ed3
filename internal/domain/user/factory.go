package user

import "time"

// NewWithPassword builds an unsaved password account. The store assigns the ID.
func NewWithPassword(name, email, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		Name:         name,
		Email:        email,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewWithGoogle builds an unsaved SSO account. The store assigns the ID.
func NewWithGoogle(name, email, googleID string) User {
	now := time.Now().UTC()

	return User{
		Name:      name,
		Email:     email,
		GoogleID:  &googleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
