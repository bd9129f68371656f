package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coeating/internal/models"
)

type PreferenceRepository interface {
	Get(ctx context.Context) (*models.PreferenceSet, error)
	Save(ctx context.Context, prefs *models.PreferenceSet) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context) (*models.PreferenceSet, error) {
	var prefs models.PreferenceSet
	if err := r.db.WithContext(ctx).First(&prefs, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Return empty defaults if the user has never saved preferences
			return &models.PreferenceSet{ID: 1}, nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *preferenceRepository) Save(ctx context.Context, prefs *models.PreferenceSet) error {
	// Ensure ID is set to 1 for single-row table
	prefs.ID = 1
	return r.db.WithContext(ctx).Save(prefs).Error
}
