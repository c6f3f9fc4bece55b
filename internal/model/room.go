package model

import "time"

// BedType classifies a room by how many beds it holds.
type BedType string

const (
	BedType1 BedType = "1 bedded"
	BedType2 BedType = "2 bedded"
	BedType3 BedType = "3 bedded"
	BedType4 BedType = "4 bedded"
)

// Capacity returns the number of beds implied by the bed type, or 0
// for an unknown value.
func (b BedType) Capacity() int {
	switch b {
	case BedType1:
		return 1
	case BedType2:
		return 2
	case BedType3:
		return 3
	case BedType4:
		return 4
	}
	return 0
}

// Valid reports whether b is one of the known bed types.
func (b BedType) Valid() bool {
	return b.Capacity() > 0
}

// Room is a single room inside a block. Room numbers are unique within
// a block and are never reissued below the current maximum; the only
// field that mutates in place is AvailableBeds.
type Room struct {
	ID            int64   `gorm:"primaryKey"`
	BlockID       int64   `gorm:"not null;uniqueIndex:idx_block_room_number"`
	RoomNumber    int     `gorm:"not null;uniqueIndex:idx_block_room_number"`
	BedType       BedType `gorm:"size:16;not null;index"`
	AvailableBeds int     `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Block Block `gorm:"constraint:OnDelete:CASCADE"`
}
