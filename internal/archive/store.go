package archive

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pothole-heatmap-backend/internal/model"
)

// maxKeptSnapshots bounds the archive: saving a new snapshot prunes the
// oldest ones beyond this count.
const maxKeptSnapshots = 5

// recordBatchSize is the insert batch size for snapshot records.
const recordBatchSize = 500

// Store persists completed dataset fetches. The archive is not a cache: the
// serving path never reads it, it only feeds the exported fallback snapshot.
type Store interface {
	SaveSnapshot(ctx context.Context, fetchedAt time.Time, records []model.PotholeRecord) error
	LatestSnapshot(ctx context.Context) (time.Time, []model.PotholeRecord, error)
	DB() *gorm.DB
}

// gormStore implements Store using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed archive store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for collaborators that manage their
// own tables, such as the push subscription handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SaveSnapshot archives one completed fetch transactionally and prunes
// snapshots beyond the retention bound. Record order is preserved through
// the Position column.
func (s *gormStore) SaveSnapshot(ctx context.Context, fetchedAt time.Time, records []model.PotholeRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot := model.Snapshot{FetchedAt: fetchedAt, Total: len(records)}
		if err := tx.Create(&snapshot).Error; err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}

		if len(records) > 0 {
			rows := make([]model.SnapshotRecord, len(records))
			for i, r := range records {
				rows[i] = model.ArchivedRecord(snapshot.ID, i, r)
			}
			if err := tx.CreateInBatches(rows, recordBatchSize).Error; err != nil {
				return fmt.Errorf("failed to archive snapshot records: %w", err)
			}
		}

		return pruneSnapshots(tx, maxKeptSnapshots)
	})
}

// pruneSnapshots deletes everything but the newest keep snapshots.
func pruneSnapshots(tx *gorm.DB, keep int) error {
	var stale []model.Snapshot
	if err := tx.Order("fetched_at DESC").Offset(keep).Find(&stale).Error; err != nil {
		return fmt.Errorf("failed to list stale snapshots: %w", err)
	}
	for _, snap := range stale {
		if err := tx.Where("snapshot_id = ?", snap.ID).Delete(&model.SnapshotRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete records of snapshot %d: %w", snap.ID, err)
		}
		if err := tx.Delete(&model.Snapshot{}, snap.ID).Error; err != nil {
			return fmt.Errorf("failed to delete snapshot %d: %w", snap.ID, err)
		}
	}
	return nil
}

// LatestSnapshot returns the newest archived dataset in its original order.
// gorm.ErrRecordNotFound is returned when the archive is empty.
func (s *gormStore) LatestSnapshot(ctx context.Context) (time.Time, []model.PotholeRecord, error) {
	var snapshot model.Snapshot
	if err := s.db.WithContext(ctx).Order("fetched_at DESC").First(&snapshot).Error; err != nil {
		return time.Time{}, nil, err
	}

	var rows []model.SnapshotRecord
	if err := s.db.WithContext(ctx).
		Where("snapshot_id = ?", snapshot.ID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to load snapshot records: %w", err)
	}

	records := make([]model.PotholeRecord, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	return snapshot.FetchedAt, records, nil
}
