package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's role in the school management domain.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// RolePrefix is prepended to the role name to form the authority embedded in
// access tokens, e.g. "ROLE_STUDENT".
const RolePrefix = "ROLE_"

// Valid reports whether the role is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// Authority returns the granted-authority string for this role. Authorities
// are always derived server-side from the stored role, never from request
// input.
func (r Role) Authority() string {
	return RolePrefix + string(r)
}

// User is the principal produced by the user store. The session core treats
// it as read-only input and never writes it back.
type User struct {
	ID           int64     `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialize
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role,omitempty"`
	Active       bool      `json:"active,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// NormalizeEmail lowercases and trims an email address. Emails are unique and
// case-normalized everywhere they are used as keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
