package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
)

type InMemoryEventStore struct {
	mu            sync.RWMutex
	events        map[id.EventID]*models.Event
	bySlug        map[string]id.EventID
	registrations *InMemoryRegistrationStore
}

// NewInMemoryEventStore creates an event store that counts seats in
// registrations.
func NewInMemoryEventStore(registrations *InMemoryRegistrationStore) *InMemoryEventStore {
	return &InMemoryEventStore{
		events:        make(map[id.EventID]*models.Event),
		bySlug:        make(map[string]id.EventID),
		registrations: registrations,
	}
}

func (s *InMemoryEventStore) FindBySlug(_ context.Context, slug string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eventID, ok := s.bySlug[strings.ToLower(slug)]
	if !ok {
		return nil, fmt.Errorf("event %q: %w", slug, sentinel.ErrNotFound)
	}
	return s.events[eventID].Clone(), nil
}

// List returns events ordered by start time, then slug.
func (s *InMemoryEventStore) List(_ context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Event) int {
		if c := a.StartAt.Compare(b.StartAt); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out, nil
}

func (s *InMemoryEventStore) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySlug[event.Slug]; taken {
		return fmt.Errorf("event slug %q: %w", event.Slug, sentinel.ErrAlreadyUsed)
	}
	if _, taken := s.events[event.ID]; taken {
		return fmt.Errorf("event id %q: %w", event.ID, sentinel.ErrAlreadyUsed)
	}
	s.events[event.ID] = event.Clone()
	s.bySlug[event.Slug] = event.ID
	return nil
}

func (s *InMemoryEventStore) Update(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[event.ID]
	if !ok {
		return fmt.Errorf("event %q: %w", event.ID, sentinel.ErrNotFound)
	}
	if current.Slug != event.Slug {
		if _, taken := s.bySlug[event.Slug]; taken {
			return fmt.Errorf("event slug %q: %w", event.Slug, sentinel.ErrAlreadyUsed)
		}
		delete(s.bySlug, current.Slug)
		s.bySlug[event.Slug] = event.ID
	}
	s.events[event.ID] = event.Clone()
	return nil
}

// LockEvent only checks the event exists; TxRunner's lock already
// serialises every transaction.
func (s *InMemoryEventStore) LockEvent(_ context.Context, eventID id.EventID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.events[eventID]; !ok {
		return fmt.Errorf("event %q: %w", eventID, sentinel.ErrNotFound)
	}
	return nil
}

// CountActiveRegistrations is only race-free inside TxRunner.RunInTx.
func (s *InMemoryEventStore) CountActiveRegistrations(_ context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	_, ok := s.events[eventID]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("event %q: %w", eventID, sentinel.ErrNotFound)
	}
	return s.registrations.countActive(eventID), nil
}

func (s *InMemoryEventStore) snapshot() func() {
	s.mu.RLock()
	events := make(map[id.EventID]*models.Event, len(s.events))
	for k, v := range s.events {
		events[k] = v.Clone()
	}
	bySlug := maps.Clone(s.bySlug)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		s.events = events
		s.bySlug = bySlug
		s.mu.Unlock()
	}
}
