package store

import (
	"errors"
	"fmt"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

var (
	ErrBlockNotFound    = errors.New("block not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrResidentNotFound = errors.New("resident not found")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrSwapNotFound     = errors.New("no pending swap request")
	ErrRoomFull         = errors.New("room has no available beds")
)

// ValidationError reports malformed input. The API boundary validates
// request shapes before they reach the store, so these mostly guard
// direct callers such as tests.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// CapacityError reports that a block cannot give up as many rooms of a
// bed type as requested. Available counts only removable rooms, i.e.
// rooms of the bed type with no resident currently assigned.
type CapacityError struct {
	BedType   model.BedType
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough %s rooms to remove. Available: %d, Requested: %d",
		e.BedType, e.Available, e.Requested)
}

// ConflictError reports that state changed between validation and
// commit, or that the requested transition is not allowed from the
// current state. Nothing is mutated when one is returned.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
