package model

import "time"

// Snapshot is one archived, fully completed fetch of the upstream dataset.
type Snapshot struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	FetchedAt time.Time `gorm:"not null;index"`
	Total     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Records []SnapshotRecord `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

// SnapshotRecord is the archived form of a PotholeRecord. Upstream record IDs
// are only unique within one fetch, so the archive keys rows by (snapshot,
// position) and keeps the upstream ID as a plain column.
type SnapshotRecord struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	SnapshotID int64 `gorm:"not null;index"`
	Position   int   `gorm:"not null"`

	RecordID        int64  `gorm:"not null"`
	Status          string `gorm:"size:64;not null"`
	Address         string `gorm:"size:256"`
	Neighborhood    string `gorm:"size:128"`
	CouncilDistrict string `gorm:"size:32"`
	ZipCode         string `gorm:"size:16"`
	CreatedAtMillis *int64
	ClosedAtMillis  *int64
	Latitude        *float64
	Longitude       *float64
}

// Record converts the archived row back to the canonical shape.
func (sr SnapshotRecord) Record() PotholeRecord {
	return PotholeRecord{
		ID:              sr.RecordID,
		Status:          sr.Status,
		Address:         sr.Address,
		Neighborhood:    sr.Neighborhood,
		CouncilDistrict: sr.CouncilDistrict,
		ZipCode:         sr.ZipCode,
		CreatedAt:       sr.CreatedAtMillis,
		ClosedAt:        sr.ClosedAtMillis,
		Latitude:        sr.Latitude,
		Longitude:       sr.Longitude,
	}
}

// ArchivedRecord converts a canonical record into its archived form.
func ArchivedRecord(snapshotID int64, position int, r PotholeRecord) SnapshotRecord {
	return SnapshotRecord{
		SnapshotID:      snapshotID,
		Position:        position,
		RecordID:        r.ID,
		Status:          r.Status,
		Address:         r.Address,
		Neighborhood:    r.Neighborhood,
		CouncilDistrict: r.CouncilDistrict,
		ZipCode:         r.ZipCode,
		CreatedAtMillis: r.CreatedAt,
		ClosedAtMillis:  r.ClosedAt,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
	}
}
