package mocks

import (
	"context"

	"coeating/internal/models"
)

// PreferenceRepositoryMock is a func-field test double for the preference
// store. The zero value acts as a single empty row.
type PreferenceRepositoryMock struct {
	GetFunc  func(ctx context.Context) (*models.PreferenceSet, error)
	SaveFunc func(ctx context.Context, prefs *models.PreferenceSet) error

	Stored models.PreferenceSet
}

func (m *PreferenceRepositoryMock) Get(ctx context.Context) (*models.PreferenceSet, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	prefs := m.Stored
	prefs.ID = 1
	return &prefs, nil
}

func (m *PreferenceRepositoryMock) Save(ctx context.Context, prefs *models.PreferenceSet) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, prefs)
	}
	prefs.ID = 1
	m.Stored = *prefs
	return nil
}
