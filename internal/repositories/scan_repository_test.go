package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coeating/internal/database"
	"coeating/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	return db
}

func TestScanRepository_InsertAssignsMonotonicIDs(t *testing.T) {
	repo := NewScanRepository(newTestDB(t))
	ctx := context.Background()

	first := models.ScanRecord{DisplayName: "Granola", Details: "first"}
	second := models.ScanRecord{DisplayName: "Shampoo", Details: "second"}
	require.NoError(t, repo.Insert(ctx, &first))
	require.NoError(t, repo.Insert(ctx, &second))

	require.NotZero(t, first.ID)
	require.Greater(t, second.ID, first.ID)
}

func TestScanRepository_ListInInsertionOrder(t *testing.T) {
	repo := NewScanRepository(newTestDB(t))
	ctx := context.Background()

	names := []string{"Granola", "Shampoo", "Tea"}
	for _, name := range names {
		rec := models.ScanRecord{DisplayName: name, Details: "details for " + name}
		require.NoError(t, repo.Insert(ctx, &rec))
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, name := range names {
		require.Equal(t, name, records[i].DisplayName)
	}

	// Two reads with no writes in between are identical.
	again, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, records, again)
}

func TestScanRepository_Delete(t *testing.T) {
	repo := NewScanRepository(newTestDB(t))
	ctx := context.Background()

	rec := models.ScanRecord{DisplayName: "Granola", Details: "first"}
	require.NoError(t, repo.Insert(ctx, &rec))

	require.NoError(t, repo.Delete(ctx, rec.ID))
	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	// Deleting a row that does not exist is not an error.
	require.NoError(t, repo.Delete(ctx, 424242))
}

func TestScanRepository_DeleteMiddleKeepsOrder(t *testing.T) {
	repo := NewScanRepository(newTestDB(t))
	ctx := context.Background()

	var ids []uint
	for _, name := range []string{"Granola", "Shampoo", "Tea"} {
		rec := models.ScanRecord{DisplayName: name, Details: name}
		require.NoError(t, repo.Insert(ctx, &rec))
		ids = append(ids, rec.ID)
	}

	require.NoError(t, repo.Delete(ctx, ids[1]))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Granola", records[0].DisplayName)
	require.Equal(t, "Tea", records[1].DisplayName)
}
