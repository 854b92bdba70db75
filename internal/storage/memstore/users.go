package memstore

import (
	"context"
	"sync"
	"time"

	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/domain/notification"
)

var (
	_ auth.UserRepository      = (*Users)(nil)
	_ notification.ContactBook = (*Users)(nil)
)

// Users is the in-memory account table. Usernames are unique.
type Users struct {
	mu         sync.RWMutex
	users      map[int64]*auth.User
	byUsername map[string]int64
	next       int64
}

func NewUsers() *Users {
	return &Users{
		users:      make(map[int64]*auth.User),
		byUsername: make(map[string]int64),
	}
}

func (s *Users) Create(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[u.Username]; taken {
		return auth.ErrUsernameTaken
	}
	s.next++
	u.ID = s.next
	u.CreatedAt = time.Now().UTC()

	uc := *u
	s.users[u.ID] = &uc
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *Users) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}

func (s *Users) GetByID(_ context.Context, id int64) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Users) PhoneNumber(_ context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[userID]; ok {
		return u.Phone, nil
	}
	return "", nil
}
