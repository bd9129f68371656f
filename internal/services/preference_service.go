package services

import (
	"context"
	"fmt"
	"sync"

	"coeating/internal/models"
	"coeating/internal/repositories"
)

// PreferenceService exposes the stored preference set as a last-write-wins
// value plus an observable stream. Observe delivers the current set
// immediately and then every saved set, so screens always render from the
// latest profile.
type PreferenceService interface {
	Get(ctx context.Context) (*models.PreferenceSet, error)
	Save(ctx context.Context, prefs *models.PreferenceSet) error
	Observe() (<-chan models.PreferenceSet, func())
}

type preferenceService struct {
	prefs repositories.PreferenceRepository

	mu      sync.Mutex
	subs    map[uint64]chan models.PreferenceSet
	nextSub uint64
}

func NewPreferenceService(prefs repositories.PreferenceRepository) PreferenceService {
	return &preferenceService{
		prefs: prefs,
		subs:  make(map[uint64]chan models.PreferenceSet),
	}
}

func (s *preferenceService) Get(ctx context.Context) (*models.PreferenceSet, error) {
	return s.prefs.Get(ctx)
}

func (s *preferenceService) Save(ctx context.Context, prefs *models.PreferenceSet) error {
	if prefs == nil {
		return fmt.Errorf("preferences are required")
	}
	if err := s.prefs.Save(ctx, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	s.broadcast(*prefs)
	return nil
}

// Observe returns a channel carrying the current preference set followed by
// every subsequent save, plus a func that cancels the subscription.
func (s *preferenceService) Observe() (<-chan models.PreferenceSet, func()) {
	ch := make(chan models.PreferenceSet, 8)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	if current, err := s.prefs.Get(context.Background()); err == nil {
		ch <- *current
	}

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *preferenceService) broadcast(prefs models.PreferenceSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- prefs:
		default:
			// Slow observers miss intermediate values; they will catch up on
			// the next save.
		}
	}
}
