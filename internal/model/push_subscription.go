package model

import "time"

// PushSubscription holds a resident's browser push subscription, used
// to deliver swap status notifications.
type PushSubscription struct {
	Endpoint   string    `gorm:"primaryKey"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	ResidentID string    `gorm:"size:36;not null;index"`
	CreatedAt  time.Time `gorm:"not null"`

	// Associations
	Resident Resident `gorm:"foreignKey:ResidentID"`
}
