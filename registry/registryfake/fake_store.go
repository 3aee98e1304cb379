package fakeregistry

import (
	"context"
	"sync"
	"time"

	"github.com/edumanager/auth-server/registry"
)

var _ registry.Store = (*FakeStore)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// FakeStore is an in-memory registry with real per-key expiry driven by an
// injectable clock, so tests can simulate TTL lapse without sleeping.
type FakeStore struct {
	entries map[string]entry
	now     func() time.Time
	failing bool
	lock    sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetNowFunc replaces the clock used for expiry checks.
func (s *FakeStore) SetNowFunc(now func() time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.now = now
}

// SetFailing makes every operation return registry.ErrUnavailable, simulating
// an unreachable store.
func (s *FakeStore) SetFailing(failing bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failing = failing
}

// TTLOf returns the remaining lifetime of key, or false when absent.
func (s *FakeStore) TTLOf(key string) (time.Duration, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return 0, false
	}
	return e.expiresAt.Sub(s.now()), true
}

func (s *FakeStore) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failing {
		return registry.ErrUnavailable
	}
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *FakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failing {
		return "", false, registry.ErrUnavailable
	}
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *FakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failing {
		return false, registry.ErrUnavailable
	}
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func (s *FakeStore) Delete(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failing {
		return registry.ErrUnavailable
	}
	delete(s.entries, key)
	return nil
}
