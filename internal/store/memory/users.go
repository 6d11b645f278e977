// Package memory provides in-process implementations of the repository
// ports. They back tests and the memory server profile.
package memory

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
)

type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]models.User
	byEmail map[string]id.UserID
	now     func() time.Time
}

// NewInMemoryUserStore creates an empty user store.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]models.User),
		byEmail: make(map[string]id.UserID),
		now:     time.Now,
	}
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, sentinel.ErrNotFound)
	}
	user := s.users[userID]
	return &user, nil
}

func (s *InMemoryUserStore) FindByIdentifier(ctx context.Context, idOrEmail string) (*models.User, error) {
	if strings.Contains(idOrEmail, "@") {
		return s.FindByEmail(ctx, idOrEmail)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id.UserID(idOrEmail)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", idOrEmail, sentinel.ErrNotFound)
	}
	return &user, nil
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return fmt.Errorf("user email %q: %w", email, sentinel.ErrAlreadyUsed)
	}
	if _, taken := s.users[user.ID]; taken {
		return fmt.Errorf("user id %q: %w", user.ID, sentinel.ErrAlreadyUsed)
	}
	s.users[user.ID] = *user
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemoryUserStore) UpdateStatus(_ context.Context, userID id.UserID, status models.UserStatus) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", userID, sentinel.ErrNotFound)
	}
	user.Status = status
	user.UpdatedAt = s.now()
	s.users[userID] = user
	return &user, nil
}

func (s *InMemoryUserStore) snapshot() func() {
	s.mu.RLock()
	users := maps.Clone(s.users)
	byEmail := maps.Clone(s.byEmail)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.users = users
		s.byEmail = byEmail
		s.mu.Unlock()
	}
}
