// ABOUTME: User profile model for the locally cached identity.
// ABOUTME: Optional profile fields are pointers; a nil Name means the profile is incomplete.
package models

import (
	"strings"
)

// User is the locally cached profile of an account.
type User struct {
	ID           int64   `json:"id" yaml:"id"`
	Name         *string `json:"name,omitempty" yaml:"name,omitempty"`
	Email        string  `json:"email" yaml:"email"`
	StreakDays   *int    `json:"streakDays,omitempty" yaml:"streakDays,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty" yaml:"profileImage,omitempty"`
}

// NewUser creates a User with the given email.
func NewUser(email string) *User {
	return &User{Email: email}
}

// WithName sets the display name.
func (u *User) WithName(name string) *User {
	u.Name = &name
	return u
}

// WithStreakDays sets the current streak.
func (u *User) WithStreakDays(days int) *User {
	u.StreakDays = &days
	return u
}

// WithProfileImage sets the profile image URI.
func (u *User) WithProfileImage(uri string) *User {
	u.ProfileImage = &uri
	return u
}

// Kind implements Entity.
func (u *User) Kind() Kind { return KindUser }

// GetID implements Entity.
func (u *User) GetID() int64 { return u.ID }

// SetID implements Entity.
func (u *User) SetID(id int64) { u.ID = id }

// Validate implements Entity.
func (u *User) Validate() error {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return invalidf(KindUser, "email is required")
	}
	if !strings.Contains(email, "@") {
		return invalidf(KindUser, "malformed email %q", u.Email)
	}
	if u.StreakDays != nil && *u.StreakDays < 0 {
		return invalidf(KindUser, "streakDays must be >= 0")
	}
	return nil
}

// DisplayName returns the name, or empty when the profile has none.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
