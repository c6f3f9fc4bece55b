package api

import (
	"fmt"
	"time"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// blockResponse is the API shape of a block and its rooms.
type blockResponse struct {
	Name       string         `json:"name"`
	TotalRooms int            `json:"totalRooms"`
	Rooms      []roomResponse `json:"rooms"`
}

type roomResponse struct {
	RoomNumber    int           `json:"roomNumber"`
	BedType       model.BedType `json:"bedType"`
	AvailableBeds int           `json:"availableBeds"`
}

func toBlockResponse(b *model.Block) blockResponse {
	rooms := make([]roomResponse, 0, len(b.Rooms))
	for _, r := range b.Rooms {
		rooms = append(rooms, roomResponse{
			RoomNumber:    r.RoomNumber,
			BedType:       r.BedType,
			AvailableBeds: r.AvailableBeds,
		})
	}
	return blockResponse{Name: b.Name, TotalRooms: b.TotalRooms, Rooms: rooms}
}

// studentResponse is the API shape of a resident.
type studentResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      *string       `json:"email"`
	Hostel     *string       `json:"hostel"`
	RoomNumber *int          `json:"roomNumber"`
	BedType    model.BedType `json:"bedType,omitempty"`
	IsVerified bool          `json:"isVerified"`
}

func toStudentResponse(r *model.Resident) studentResponse {
	resp := studentResponse{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		BedType:    r.BedType,
		IsVerified: r.Verified,
	}
	if r.Block != nil {
		resp.Hostel = &r.Block.Name
	}
	if r.Room != nil {
		resp.RoomNumber = &r.Room.RoomNumber
	}
	return resp
}

// swapResponse is the API shape of a swap request.
type swapResponse struct {
	ID              int64            `json:"id"`
	RequesterID     string           `json:"requesterId"`
	TargetStudentID string           `json:"targetStudentId"`
	Status          model.SwapStatus `json:"status"`
	Message         string           `json:"message,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// describeAssignment renders a resident's current room for
// notification bodies.
func describeAssignment(r *model.Resident) string {
	if r.Block == nil || r.Room == nil {
		return "an unassigned room"
	}
	return fmt.Sprintf("%s room %d", r.Block.Name, r.Room.RoomNumber)
}

func toSwapResponse(s *model.SwapRequest) swapResponse {
	return swapResponse{
		ID:              s.ID,
		RequesterID:     s.RequesterID,
		TargetStudentID: s.TargetID,
		Status:          s.Status,
		Message:         s.Message,
		CreatedAt:       s.CreatedAt,
	}
}
