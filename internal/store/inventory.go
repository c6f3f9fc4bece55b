package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// GrowRooms appends count rooms of the given bed type to a block,
// creating the block lazily on first use. New rooms are numbered from
// the current maximum room number + 1, so numbers deleted below the
// maximum are never reissued, and each starts with a full complement
// of available beds.
func (s *gormStore) GrowRooms(ctx context.Context, block string, count int, bedType model.BedType) (*model.Block, error) {
	if err := checkInventoryInput(block, count, bedType); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(blockKey(block))
	defer unlock()

	var out *model.Block
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := getOrCreateBlock(tx, block)
		if err != nil {
			return err
		}

		var maxNumber int
		if err := tx.Model(&model.Room{}).
			Where("block_id = ?", b.ID).
			Select("COALESCE(MAX(room_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return fmt.Errorf("failed to determine next room number: %w", err)
		}

		rooms := make([]model.Room, count)
		for i := range rooms {
			rooms[i] = model.Room{
				BlockID:       b.ID,
				RoomNumber:    maxNumber + 1 + i,
				BedType:       bedType,
				AvailableBeds: bedType.Capacity(),
			}
		}
		if err := tx.Create(&rooms).Error; err != nil {
			return fmt.Errorf("failed to create rooms: %w", err)
		}

		if err := tx.Model(b).
			Update("total_rooms", gorm.Expr("total_rooms + ?", count)).Error; err != nil {
			return fmt.Errorf("failed to update room counter: %w", err)
		}

		out, err = loadBlock(tx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ShrinkRooms removes count rooms of the given bed type from a block,
// most recently numbered first. Only rooms with no resident assigned
// are removable; a shrink never strands a resident. The block keeps
// its surviving room numbers untouched.
func (s *gormStore) ShrinkRooms(ctx context.Context, block string, count int, bedType model.BedType) (*model.Block, error) {
	if err := checkInventoryInput(block, count, bedType); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(blockKey(block))
	defer unlock()

	capacity := bedType.Capacity()

	var out *model.Block
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Block
		if err := tx.Where("name = ?", block).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBlockNotFound
			}
			return fmt.Errorf("failed to load block %q: %w", block, err)
		}

		// A room is empty exactly when its bed counter is back at the
		// bed type's capacity.
		var removable []model.Room
		if err := tx.
			Where("block_id = ? AND bed_type = ? AND available_beds = ?", b.ID, bedType, capacity).
			Order("room_number DESC").
			Find(&removable).Error; err != nil {
			return fmt.Errorf("failed to list removable rooms: %w", err)
		}
		if len(removable) < count {
			return &CapacityError{BedType: bedType, Available: len(removable), Requested: count}
		}

		ids := make([]int64, count)
		for i, r := range removable[:count] {
			ids[i] = r.ID
		}

		// The bed-count guard re-checks emptiness at delete time; a
		// concurrent assignment rolls the whole shrink back.
		res := tx.Where("id IN ? AND available_beds = ?", ids, capacity).Delete(&model.Room{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete rooms: %w", res.Error)
		}
		if res.RowsAffected != int64(count) {
			return &ConflictError{Reason: "a room was occupied while being removed"}
		}

		if err := tx.Model(&b).
			Update("total_rooms", gorm.Expr("total_rooms - ?", count)).Error; err != nil {
			return fmt.Errorf("failed to update room counter: %w", err)
		}

		var err error
		out, err = loadBlock(tx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetBlock returns a block with its rooms ordered by room number.
func (s *gormStore) GetBlock(ctx context.Context, name string) (*model.Block, error) {
	var b model.Block
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load block %q: %w", name, err)
	}
	return loadBlock(s.db.WithContext(ctx), b.ID)
}

// ListBlocks returns all blocks with their rooms.
func (s *gormStore) ListBlocks(ctx context.Context) ([]model.Block, error) {
	var blocks []model.Block
	err := s.db.WithContext(ctx).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("room_number ASC") }).
		Order("name ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return blocks, nil
}

func checkInventoryInput(block string, count int, bedType model.BedType) error {
	if !model.IsKnownBlock(block) {
		return &ValidationError{Reason: fmt.Sprintf("unknown block %q", block)}
	}
	if count < 1 {
		return &ValidationError{Reason: "count must be at least 1"}
	}
	if !bedType.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown bed type %q", bedType)}
	}
	return nil
}

func getOrCreateBlock(tx *gorm.DB, name string) (*model.Block, error) {
	var b model.Block
	err := tx.Where("name = ?", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b = model.Block{Name: name, TotalRooms: 0}
		if err := tx.Create(&b).Error; err != nil {
			return nil, fmt.Errorf("failed to create block %q: %w", name, err)
		}
		return &b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load block %q: %w", name, err)
	}
	return &b, nil
}

func loadBlock(tx *gorm.DB, id int64) (*model.Block, error) {
	var b model.Block
	err := tx.
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("room_number ASC") }).
		First(&b, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload block %d: %w", id, err)
	}
	return &b, nil
}
