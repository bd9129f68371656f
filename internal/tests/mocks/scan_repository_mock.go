package mocks

import (
	"context"

	"coeating/internal/models"
)

// ScanRepositoryMock is a func-field test double for the scan store. The
// zero value behaves like an empty, always-succeeding store backed by an
// in-memory slice.
type ScanRepositoryMock struct {
	ListFunc   func(ctx context.Context) ([]models.ScanRecord, error)
	InsertFunc func(ctx context.Context, rec *models.ScanRecord) error
	DeleteFunc func(ctx context.Context, id uint) error

	Records []models.ScanRecord
	nextID  uint
}

func (m *ScanRepositoryMock) List(ctx context.Context) ([]models.ScanRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	out := make([]models.ScanRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

func (m *ScanRepositoryMock) Insert(ctx context.Context, rec *models.ScanRecord) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, rec)
	}
	m.nextID++
	rec.ID = m.nextID
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *ScanRepositoryMock) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	for i, rec := range m.Records {
		if rec.ID == id {
			m.Records = append(m.Records[:i], m.Records[i+1:]...)
			break
		}
	}
	return nil
}

// Seed preloads stored records and keeps ID assignment consistent.
func (m *ScanRepositoryMock) Seed(records ...models.ScanRecord) {
	m.Records = append(m.Records, records...)
	for _, rec := range records {
		if rec.ID > m.nextID {
			m.nextID = rec.ID
		}
	}
}
