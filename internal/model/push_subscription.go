package model

import "time"

// PushSubscription holds a browser push subscription. Subscribers are
// notified whenever a background refresh completes with a fresh dataset,
// so there is no per-record mapping table.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
