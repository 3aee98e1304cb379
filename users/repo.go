package users

import "errors"

// ErrNotFound is returned by repos when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// UserRepo supplies principals to the session core. The core only ever reads
// from it; account management lives elsewhere.
type UserRepo interface {
	GetByEmail(email string) (*User, error)
	GetByID(id int64) (*User, error)
}
