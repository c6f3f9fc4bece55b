package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/db"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/store"
)

// TestSwapLifecycle walks the whole happy path: the warden provisions
// rooms, two residents move in, one requests a swap and the other
// accepts it. Database state is verified at each step.
func TestSwapLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:swap_lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, db.Migrate(testDB))

	s := store.NewGormStore(testDB)
	ctx := context.Background()

	var alice, bob *model.Resident

	t.Run("Provision Rooms", func(t *testing.T) {
		_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
		require.NoError(t, err)
		_, err = s.GrowRooms(ctx, "block5", 3, model.BedType2)
		require.NoError(t, err)

		var roomCount int64
		testDB.Model(&model.Room{}).Count(&roomCount)
		assert.Equal(t, int64(5), roomCount)
	})

	t.Run("Residents Move In", func(t *testing.T) {
		aliceEmail := "alice@hostel.test"
		alice = &model.Resident{Name: "Alice", Email: &aliceEmail, Verified: true}
		require.NoError(t, s.CreateResident(ctx, alice))
		alice, err = s.AssignRoom(ctx, alice.ID, "block1", 1)
		require.NoError(t, err)

		bobEmail := "bob@hostel.test"
		bob = &model.Resident{Name: "Bob", Email: &bobEmail, Verified: true}
		require.NoError(t, s.CreateResident(ctx, bob))
		bob, err = s.AssignRoom(ctx, bob.ID, "block5", 3)
		require.NoError(t, err)

		var aliceRoom model.Room
		require.NoError(t, testDB.First(&aliceRoom, *alice.RoomID).Error)
		assert.Equal(t, 3, aliceRoom.AvailableBeds, "one of four beds taken")

		var bobRoom model.Room
		require.NoError(t, testDB.First(&bobRoom, *bob.RoomID).Error)
		assert.Equal(t, 1, bobRoom.AvailableBeds, "one of two beds taken")
	})

	t.Run("Swap Requested", func(t *testing.T) {
		swap, err := s.RequestSwap(ctx, alice.ID, bob.ID, "closer to my department")
		require.NoError(t, err)
		assert.Equal(t, model.SwapPending, swap.Status)

		var pendingCount int64
		testDB.Model(&model.SwapRequest{}).Where("status = ?", model.SwapPending).Count(&pendingCount)
		assert.Equal(t, int64(1), pendingCount)
	})

	t.Run("Swap Accepted", func(t *testing.T) {
		aliceRoomID, bobRoomID := *alice.RoomID, *bob.RoomID

		result, err := s.AcceptSwap(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SwapAccepted, result.Request.Status)

		// Assignments exchanged in the database, not just in the
		// returned snapshots.
		var dbAlice, dbBob model.Resident
		require.NoError(t, testDB.First(&dbAlice, "id = ?", alice.ID).Error)
		require.NoError(t, testDB.First(&dbBob, "id = ?", bob.ID).Error)
		assert.Equal(t, bobRoomID, *dbAlice.RoomID)
		assert.Equal(t, aliceRoomID, *dbBob.RoomID)
		assert.Equal(t, model.BedType2, dbAlice.BedType)
		assert.Equal(t, model.BedType4, dbBob.BedType)

		// Occupancy preserved: the exchange freed no beds.
		var rooms []model.Room
		require.NoError(t, testDB.Find(&rooms, []int64{aliceRoomID, bobRoomID}).Error)
		for _, room := range rooms {
			assert.Equal(t, room.BedType.Capacity()-1, room.AvailableBeds)
		}

		var pendingCount int64
		testDB.Model(&model.SwapRequest{}).Where("status = ?", model.SwapPending).Count(&pendingCount)
		assert.Equal(t, int64(0), pendingCount)
	})

	t.Run("Occupied Rooms Survive A Shrink", func(t *testing.T) {
		// block5 has rooms 1..3; bob now holds alice's old room in
		// block1 and alice holds room 3 in block5. Removing two
		// 2-bedded rooms must take the empty ones and spare hers.
		block, err := s.ShrinkRooms(ctx, "block5", 2, model.BedType2)
		require.NoError(t, err)

		require.Len(t, block.Rooms, 1)
		assert.Equal(t, 3, block.Rooms[0].RoomNumber)

		reloaded, err := s.GetResident(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, reloaded.Room.RoomNumber)
	})
}
