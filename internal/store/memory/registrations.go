package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
)

type registrationKey struct {
	event id.EventID
	user  id.UserID
}

type InMemoryRegistrationStore struct {
	mu            sync.RWMutex
	registrations map[id.RegistrationID]models.Registration
	byPair        map[registrationKey]id.RegistrationID
	now           func() time.Time
}

func NewInMemoryRegistrationStore() *InMemoryRegistrationStore {
	return &InMemoryRegistrationStore{
		registrations: make(map[id.RegistrationID]models.Registration),
		byPair:        make(map[registrationKey]id.RegistrationID),
		now:           time.Now,
	}
}

func (s *InMemoryRegistrationStore) FindByEventAndUser(_ context.Context, eventID id.EventID, userID id.UserID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	registrationID, ok := s.byPair[registrationKey{eventID, userID}]
	if !ok {
		return nil, fmt.Errorf("registration %s/%s: %w", eventID, userID, sentinel.ErrNotFound)
	}
	r := s.registrations[registrationID]
	return &r, nil
}

// ListByEvent returns registrations in creation order.
func (s *InMemoryRegistrationStore) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Registration
	for _, r := range s.registrations {
		if r.EventID == eventID {
			out = append(out, &r)
		}
	}
	slices.SortFunc(out, func(a, b *models.Registration) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *InMemoryRegistrationStore) Create(_ context.Context, registration *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := registrationKey{registration.EventID, registration.UserID}
	if _, taken := s.byPair[key]; taken {
		return fmt.Errorf("registration %s/%s: %w", key.event, key.user, sentinel.ErrAlreadyUsed)
	}
	if _, taken := s.registrations[registration.ID]; taken {
		return fmt.Errorf("registration id %q: %w", registration.ID, sentinel.ErrAlreadyUsed)
	}
	s.registrations[registration.ID] = *registration
	s.byPair[key] = registration.ID
	return nil
}

func (s *InMemoryRegistrationStore) UpdateStatus(_ context.Context, registrationID id.RegistrationID, status models.RegistrationStatus) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registrations[registrationID]
	if !ok {
		return nil, fmt.Errorf("registration %q: %w", registrationID, sentinel.ErrNotFound)
	}
	r.Status = status
	r.UpdatedAt = s.now()
	s.registrations[registrationID] = r
	return &r, nil
}

func (s *InMemoryRegistrationStore) countActive(eventID id.EventID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.registrations {
		if r.EventID == eventID && r.IsActive() {
			n++
		}
	}
	return n
}

func (s *InMemoryRegistrationStore) snapshot() func() {
	s.mu.RLock()
	registrations := maps.Clone(s.registrations)
	byPair := maps.Clone(s.byPair)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.registrations = registrations
		s.byPair = byPair
		s.mu.Unlock()
	}
}
