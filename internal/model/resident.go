package model

import "time"

// Resident is a student living (or about to live) in the hostel. The
// id is immutable; the (block, room, bed type) assignment is not. A
// resident created through phone signup starts with no assignment.
type Resident struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Name         string  `gorm:"size:128"`
	Email        *string `gorm:"uniqueIndex;size:256"`
	Phone        *string `gorm:"uniqueIndex;size:32"`
	PasswordHash string  `gorm:"size:128"`
	Verified     bool    `gorm:"not null;default:false"`

	// Current assignment; all nil/empty until the resident is placed.
	BlockID *int64  `gorm:"index"`
	RoomID  *int64  `gorm:"index"`
	BedType BedType `gorm:"size:16"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Block *Block `gorm:"foreignKey:BlockID"`
	Room  *Room  `gorm:"foreignKey:RoomID"`
}

// Assigned reports whether the resident currently holds a room.
func (r *Resident) Assigned() bool {
	return r.BlockID != nil && r.RoomID != nil
}
