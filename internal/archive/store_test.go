package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pothole-heatmap-backend/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Snapshot{}, &model.SnapshotRecord{}))
	return NewGormStore(db)
}

func lat(v float64) *float64 { return &v }

func TestSaveAndLoadSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fetchedAt := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	created := int64(1705761000000)
	records := []model.PotholeRecord{
		{ID: 3, Status: model.StatusOpen, Address: "500 Woodward Ave", Latitude: lat(42.33), Longitude: lat(-83.04), CreatedAt: &created},
		{ID: 1, Status: model.StatusClosed, Neighborhood: "Midtown"},
		{ID: 2, Status: "Referred"},
	}

	require.NoError(t, store.SaveSnapshot(ctx, fetchedAt, records))

	gotAt, got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, fetchedAt.Unix(), gotAt.Unix())
	assert.Equal(t, records, got, "order and field values survive the round trip")
}

func TestLatestSnapshot_Empty(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.LatestSnapshot(context.Background())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveSnapshot_PrunesOldSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxKeptSnapshots+3; i++ {
		records := []model.PotholeRecord{{ID: int64(i), Status: model.StatusOpen}}
		require.NoError(t, store.SaveSnapshot(ctx, base.Add(time.Duration(i)*time.Hour), records))
	}

	var snapshotCount int64
	require.NoError(t, store.DB().Model(&model.Snapshot{}).Count(&snapshotCount).Error)
	assert.Equal(t, int64(maxKeptSnapshots), snapshotCount)

	// The newest snapshot must still be the one returned.
	_, records, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(maxKeptSnapshots+2), records[0].ID)

	// No orphaned records for pruned snapshots.
	var recordCount int64
	require.NoError(t, store.DB().Model(&model.SnapshotRecord{}).Count(&recordCount).Error)
	assert.Equal(t, int64(maxKeptSnapshots), recordCount)
}
