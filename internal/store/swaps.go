package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// RequestSwap opens a pending swap request from requester to target.
// A second request for the same ordered pair while one is pending is
// rejected; the requester must resolve or wait out the first.
func (s *gormStore) RequestSwap(ctx context.Context, requesterID, targetID, message string) (*model.SwapRequest, error) {
	if requesterID == targetID {
		return nil, &ValidationError{Reason: "a resident cannot request a swap with themselves"}
	}

	unlock := s.locks.Lock(pairKey(requesterID, targetID))
	defer unlock()

	var out *model.SwapRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range []string{requesterID, targetID} {
			var r model.Resident
			if err := tx.Select("id").First(&r, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrResidentNotFound
				}
				return fmt.Errorf("failed to load resident %s: %w", id, err)
			}
		}

		var pending int64
		if err := tx.Model(&model.SwapRequest{}).
			Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, model.SwapPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("failed to check for pending requests: %w", err)
		}
		if pending > 0 {
			return &ConflictError{Reason: "a pending swap request to this resident already exists"}
		}

		req := model.SwapRequest{
			RequesterID: requesterID,
			TargetID:    targetID,
			Status:      model.SwapPending,
			Message:     message,
		}
		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("failed to create swap request: %w", err)
		}
		out = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptSwap resolves the pending request from requester to accepter
// by exchanging the two residents' room assignments. The exchange and
// the status transition commit together or not at all: if either
// resident's room has meanwhile been removed by an inventory shrink,
// everything rolls back and a ConflictError is returned.
func (s *gormStore) AcceptSwap(ctx context.Context, accepterID, requesterID string) (*SwapResult, error) {
	unlock := s.locks.Lock(pairKey(requesterID, accepterID))
	defer unlock()

	var out *SwapResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.SwapRequest
		err := tx.Where("requester_id = ? AND target_id = ? AND status = ?",
			requesterID, accepterID, model.SwapPending).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load swap request: %w", err)
		}

		requester, err := loadSwapParty(tx, requesterID)
		if err != nil {
			return err
		}
		accepter, err := loadSwapParty(tx, accepterID)
		if err != nil {
			return err
		}

		// The conditional update makes a double accept lose cleanly.
		res := tx.Model(&model.SwapRequest{}).
			Where("id = ? AND status = ?", req.ID, model.SwapPending).
			Updates(map[string]any{"status": model.SwapAccepted, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return fmt.Errorf("failed to update swap status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Reason: "swap request was already resolved"}
		}

		if err := writeAssignment(tx, requester, accepter); err != nil {
			return err
		}
		if err := writeAssignment(tx, accepter, requester); err != nil {
			return err
		}

		result := SwapResult{}
		if err := tx.First(&result.Request, req.ID).Error; err != nil {
			return fmt.Errorf("failed to reload swap request: %w", err)
		}
		if err := tx.Preload("Block").Preload("Room").First(&result.Requester, "id = ?", requesterID).Error; err != nil {
			return fmt.Errorf("failed to reload requester: %w", err)
		}
		if err := tx.Preload("Block").Preload("Room").First(&result.Accepter, "id = ?", accepterID).Error; err != nil {
			return fmt.Errorf("failed to reload accepter: %w", err)
		}
		out = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadSwapParty loads one side of a swap and verifies it still holds a
// room that exists. An admin shrink between request and accept turns
// the accept into a conflict rather than a half-applied exchange.
func loadSwapParty(tx *gorm.DB, id string) (*model.Resident, error) {
	var r model.Resident
	if err := tx.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, fmt.Errorf("failed to load resident %s: %w", id, err)
	}
	if !r.Assigned() {
		return nil, &ConflictError{Reason: fmt.Sprintf("resident %s has no room assignment", id)}
	}
	var room model.Room
	if err := tx.First(&room, *r.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ConflictError{Reason: fmt.Sprintf("resident %s's room no longer exists", id)}
		}
		return nil, fmt.Errorf("failed to load room %d: %w", *r.RoomID, err)
	}
	return &r, nil
}

// writeAssignment gives to the (block, room, bed type) of from. The
// update is keyed to the room captured when to was loaded: pair locks
// do not serialize two accepts that share a resident, so an accept
// whose snapshot went stale must fail the whole exchange rather than
// write it.
func writeAssignment(tx *gorm.DB, to, from *model.Resident) error {
	updates := map[string]any{
		"block_id":   from.BlockID,
		"room_id":    from.RoomID,
		"bed_type":   from.BedType,
		"updated_at": time.Now().UTC(),
	}
	res := tx.Model(&model.Resident{}).
		Where("id = ? AND room_id = ?", to.ID, *to.RoomID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to write assignment for %s: %w", to.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &ConflictError{Reason: fmt.Sprintf("resident %s's assignment changed during the swap", to.ID)}
	}
	return nil
}

// RejectSwap resolves the pending request from requester to accepter
// without touching either assignment.
func (s *gormStore) RejectSwap(ctx context.Context, accepterID, requesterID string) (*model.SwapRequest, error) {
	unlock := s.locks.Lock(pairKey(requesterID, accepterID))
	defer unlock()

	var out *model.SwapRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.SwapRequest
		err := tx.Where("requester_id = ? AND target_id = ? AND status = ?",
			requesterID, accepterID, model.SwapPending).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load swap request: %w", err)
		}

		res := tx.Model(&model.SwapRequest{}).
			Where("id = ? AND status = ?", req.ID, model.SwapPending).
			Updates(map[string]any{"status": model.SwapRejected, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return fmt.Errorf("failed to update swap status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Reason: "swap request was already resolved"}
		}

		if err := tx.First(&req, req.ID).Error; err != nil {
			return fmt.Errorf("failed to reload swap request: %w", err)
		}
		out = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListSwaps returns every request in which the resident participates,
// newest first.
func (s *gormStore) ListSwaps(ctx context.Context, residentID string) ([]model.SwapRequest, error) {
	var swaps []model.SwapRequest
	err := s.db.WithContext(ctx).
		Preload("Requester").Preload("Target").
		Where("requester_id = ? OR target_id = ?", residentID, residentID).
		Order("created_at DESC").
		Find(&swaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list swap requests: %w", err)
	}
	return swaps, nil
}
