package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
)

// InMemoryRoleStore holds role definitions and grants.
type InMemoryRoleStore struct {
	mu     sync.RWMutex
	roles  map[string]models.Role
	grants map[id.UserID]map[string]struct{}
}

// NewInMemoryRoleStore seeds the known roles.
func NewInMemoryRoleStore() *InMemoryRoleStore {
	s := &InMemoryRoleStore{
		roles:  make(map[string]models.Role),
		grants: make(map[id.UserID]map[string]struct{}),
	}
	for _, r := range models.KnownRoles {
		s.roles[r.Name] = r
	}
	return s
}

func (s *InMemoryRoleStore) FindRole(_ context.Context, name string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, fmt.Errorf("role %q: %w", name, sentinel.ErrNotFound)
	}
	return &r, nil
}

func (s *InMemoryRoleStore) Grant(_ context.Context, userID id.UserID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role]; !ok {
		return fmt.Errorf("role %q: %w", role, sentinel.ErrNotFound)
	}
	if s.grants[userID] == nil {
		s.grants[userID] = make(map[string]struct{})
	}
	s.grants[userID][role] = struct{}{}
	return nil
}

func (s *InMemoryRoleStore) Revoke(_ context.Context, userID id.UserID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants[userID], role)
	return nil
}

// RolesOf returns the user's roles sorted by name.
func (s *InMemoryRoleStore) RolesOf(_ context.Context, userID id.UserID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.grants[userID])), nil
}

func (s *InMemoryRoleStore) snapshot() func() {
	s.mu.RLock()
	grants := make(map[id.UserID]map[string]struct{}, len(s.grants))
	for k, v := range s.grants {
		grants[k] = maps.Clone(v)
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.grants = grants
		s.mu.Unlock()
	}
}
