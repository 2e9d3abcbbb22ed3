package user

import (
	"errors"
	"time"
)

// User is the persisted account. Exactly one of PasswordHash and GoogleID is set,
// depending on which registration path created it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // never expose hash in JSON
	GoogleID     *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity is what a session token says about its bearer.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

var (
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by stores when their own uniqueness constraint on email fires.
	ErrEmailTaken = errors.New("email already in use")
)

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,maxbytes=72"`
}

type RegisterSSORequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	GoogleID string `json:"googleId" binding:"required,notblank"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}
