package model

import "time"

// Admin is a hostel administrator account. Admins manage room
// inventory and are never assigned rooms themselves.
type Admin struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
