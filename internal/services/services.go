package services

import (
	"gorm.io/gorm"

	"coeating/internal/repositories"
)

// DbServices aggregates the domain services backed by the database.
type DbServices struct {
	Preferences PreferenceService
	ScanRecords repositories.ScanRepository
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB) *DbServices {
	scanRepo := repositories.NewScanRepository(db)
	prefRepo := repositories.NewPreferenceRepository(db)

	return &DbServices{
		Preferences: NewPreferenceService(prefRepo),
		ScanRecords: scanRepo,
	}
}
