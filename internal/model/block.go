package model

import "time"

// Block represents a hostel block (one building of the campus).
type Block struct {
	ID         int64     `gorm:"primaryKey"`
	Name       string    `gorm:"uniqueIndex;size:64;not null"`
	TotalRooms int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`

	// Associations
	Rooms []Room `gorm:"foreignKey:BlockID"`
}

// BlockNames is the fixed set of hostel blocks the campus operates.
// Inventory operations create the Block row lazily on first use.
var BlockNames = []string{
	"block1", "block2", "block3", "block4",
	"block5", "block6", "block7", "block8",
}

// IsKnownBlock reports whether name is one of the campus blocks.
func IsKnownBlock(name string) bool {
	for _, n := range BlockNames {
		if n == name {
			return true
		}
	}
	return false
}
