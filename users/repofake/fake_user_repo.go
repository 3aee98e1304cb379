package fakeuserrepo

import (
	"sync"

	"github.com/edumanager/auth-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user store keyed by normalized email. It backs
// tests and the dev bootstrap; real deployments plug in their own UserRepo.
type FakeUserRepo struct {
	byEmail map[string]*users.User
	byID    map[int64]*users.User
	nextID  int64
	lock    sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byEmail: make(map[string]*users.User),
		byID:    make(map[int64]*users.User),
		nextID:  1,
	}
}

// Upsert adds or replaces a user, assigning an ID when missing.
func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == 0 {
		user.ID = ur.nextID
		ur.nextID++
	}
	email := users.NormalizeEmail(user.Email)
	user.Email = email
	ur.byEmail[email] = user
	ur.byID[user.ID] = user
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.byEmail[users.NormalizeEmail(email)]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}

func (ur *FakeUserRepo) GetByID(id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}
