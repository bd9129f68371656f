package repositories

import (
	"context"

	"gorm.io/gorm"

	"coeating/internal/models"
)

// ScanRepository is the durable boundary for scan records. List returns
// records in insertion order; Insert assigns the record's ID; Delete of an
// unknown ID is not an error.
type ScanRepository interface {
	List(ctx context.Context) ([]models.ScanRecord, error)
	Insert(ctx context.Context, rec *models.ScanRecord) error
	Delete(ctx context.Context, id uint) error
}

type scanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) List(ctx context.Context) ([]models.ScanRecord, error) {
	var records []models.ScanRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *scanRepository) Insert(ctx context.Context, rec *models.ScanRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *scanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ScanRecord{}, id).Error
}
