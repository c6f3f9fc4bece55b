package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// CreateResident persists a new resident, generating its id when the
// caller left it empty. A resident may start without a room; the
// assignment goes through AssignRoom so bed counters stay consistent.
func (s *gormStore) CreateResident(ctx context.Context, r *model.Resident) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create resident: %w", err)
	}
	return nil
}

func (s *gormStore) GetResident(ctx context.Context, id string) (*model.Resident, error) {
	var r model.Resident
	err := s.db.WithContext(ctx).Preload("Block").Preload("Room").First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load resident %s: %w", id, err)
	}
	return &r, nil
}

func (s *gormStore) FindResidentByEmail(ctx context.Context, email string) (*model.Resident, error) {
	return s.findResident(ctx, "email = ?", email)
}

func (s *gormStore) FindResidentByPhone(ctx context.Context, phone string) (*model.Resident, error) {
	return s.findResident(ctx, "phone = ?", phone)
}

func (s *gormStore) findResident(ctx context.Context, query string, arg any) (*model.Resident, error) {
	var r model.Resident
	err := s.db.WithContext(ctx).Preload("Block").Preload("Room").Where(query, arg).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up resident: %w", err)
	}
	return &r, nil
}

// ListResidents returns residents matching the filter, newest first.
func (s *gormStore) ListResidents(ctx context.Context, filter ResidentFilter) ([]model.Resident, error) {
	q := s.db.WithContext(ctx).Preload("Block").Preload("Room")
	if filter.Block != "" {
		q = q.Joins("JOIN blocks ON blocks.id = residents.block_id").
			Where("blocks.name = ?", filter.Block)
	}
	if filter.BedType != "" {
		q = q.Where("residents.bed_type = ?", filter.BedType)
	}

	var residents []model.Resident
	if err := q.Order("residents.created_at DESC").Find(&residents).Error; err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, nil
}

// AssignRoom moves a resident into the given room, releasing any bed
// the resident held before. Bed counters and the assignment change in
// one transaction; a full room rejects the assignment.
func (s *gormStore) AssignRoom(ctx context.Context, residentID, block string, roomNumber int) (*model.Resident, error) {
	unlock := s.locks.Lock(blockKey(block))
	defer unlock()

	var out *model.Resident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r model.Resident
		if err := tx.First(&r, "id = ?", residentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResidentNotFound
			}
			return fmt.Errorf("failed to load resident %s: %w", residentID, err)
		}

		var b model.Block
		if err := tx.Where("name = ?", block).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBlockNotFound
			}
			return fmt.Errorf("failed to load block %q: %w", block, err)
		}

		var room model.Room
		err := tx.Where("block_id = ? AND room_number = ?", b.ID, roomNumber).First(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load room %d in %q: %w", roomNumber, block, err)
		}

		if r.RoomID != nil && *r.RoomID == room.ID {
			// Already there.
			out = &r
			return nil
		}

		// Claim a bed; the guard rejects the move if the room filled
		// up since it was read.
		res := tx.Model(&model.Room{}).
			Where("id = ? AND available_beds > 0", room.ID).
			UpdateColumn("available_beds", gorm.Expr("available_beds - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to claim bed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRoomFull
		}

		if r.RoomID != nil {
			if err := tx.Model(&model.Room{}).
				Where("id = ?", *r.RoomID).
				UpdateColumn("available_beds", gorm.Expr("available_beds + 1")).Error; err != nil {
				return fmt.Errorf("failed to release previous bed: %w", err)
			}
		}

		updates := map[string]any{
			"block_id":   b.ID,
			"room_id":    room.ID,
			"bed_type":   room.BedType,
			"updated_at": time.Now().UTC(),
		}
		if err := tx.Model(&r).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}

		var reloaded model.Resident
		if err := tx.Preload("Block").Preload("Room").First(&reloaded, "id = ?", r.ID).Error; err != nil {
			return fmt.Errorf("failed to reload resident %s: %w", r.ID, err)
		}
		out = &reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkVerified flags a resident as verified after OTP confirmation.
func (s *gormStore) MarkVerified(ctx context.Context, residentID string) error {
	res := s.db.WithContext(ctx).Model(&model.Resident{}).
		Where("id = ?", residentID).
		Update("verified", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark resident verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResidentNotFound
	}
	return nil
}

func (s *gormStore) UpdateResidentPassword(ctx context.Context, residentID, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&model.Resident{}).
		Where("id = ?", residentID).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResidentNotFound
	}
	return nil
}

// CreateAdmin persists a new administrator account.
func (s *gormStore) CreateAdmin(ctx context.Context, a *model.Admin) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *gormStore) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	return &a, nil
}

func (s *gormStore) UpdateAdminPassword(ctx context.Context, username, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&model.Admin{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update admin password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
