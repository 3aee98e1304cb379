package auth

import (
	"context"
	"errors"

	"github.com/edumanager/auth-server/users"
)

// CredentialVerifier checks a password against a stored hash and returns the
// principal. Failures are terminal: the session core never retries a failed
// verification.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*users.User, error)
}

var _ CredentialVerifier = (*RepoVerifier)(nil)

// RepoVerifier verifies credentials against the user store with bcrypt.
type RepoVerifier struct {
	repo users.UserRepo
}

func NewRepoVerifier(repo users.UserRepo) *RepoVerifier {
	return &RepoVerifier{repo: repo}
}

// Verify looks the principal up by normalized email and compares the
// password. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (v *RepoVerifier) Verify(_ context.Context, email, password string) (*users.User, error) {
	user, err := v.repo.GetByEmail(users.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
