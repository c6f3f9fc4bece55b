package model

import "time"

// SwapStatus is the lifecycle state of a swap request. Accepted and
// rejected are terminal.
type SwapStatus string

const (
	SwapPending  SwapStatus = "pending"
	SwapAccepted SwapStatus = "accepted"
	SwapRejected SwapStatus = "rejected"
)

// SwapRequest is a proposal by one resident to exchange room
// assignments with another. At most one pending request may exist per
// ordered (requester, target) pair.
type SwapRequest struct {
	ID          int64      `gorm:"primaryKey"`
	RequesterID string     `gorm:"size:36;not null;index:idx_swap_pair"`
	TargetID    string     `gorm:"size:36;not null;index:idx_swap_pair"`
	Status      SwapStatus `gorm:"size:16;not null;index"`
	Message     string     `gorm:"size:512"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`

	// Associations
	Requester Resident `gorm:"foreignKey:RequesterID"`
	Target    Resident `gorm:"foreignKey:TargetID"`
}
