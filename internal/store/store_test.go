package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/db"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// newTestStore opens a fresh in-memory SQLite database per test. The
// database is named after the test so parallel packages never share
// state through SQLite's shared cache.
func newTestStore(t *testing.T) Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

func seedResident(t *testing.T, s Store, name, block string, roomNumber int) *model.Resident {
	t.Helper()

	email := name + "@hostel.test"
	r := &model.Resident{Name: name, Email: &email, Verified: true}
	require.NoError(t, s.CreateResident(context.Background(), r))

	assigned, err := s.AssignRoom(context.Background(), r.ID, block, roomNumber)
	require.NoError(t, err)
	return assigned
}

func TestGrowRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	block, err := s.GrowRooms(ctx, "block1", 3, model.BedType4)
	require.NoError(t, err)

	assert.Equal(t, "block1", block.Name)
	assert.Equal(t, 3, block.TotalRooms)
	require.Len(t, block.Rooms, 3)
	for i, room := range block.Rooms {
		assert.Equal(t, i+1, room.RoomNumber)
		assert.Equal(t, model.BedType4, room.BedType)
		assert.Equal(t, 4, room.AvailableBeds)
	}

	// Growing again continues the numbering.
	block, err = s.GrowRooms(ctx, "block1", 2, model.BedType2)
	require.NoError(t, err)
	assert.Equal(t, 5, block.TotalRooms)
	require.Len(t, block.Rooms, 5)
	assert.Equal(t, 4, block.Rooms[3].RoomNumber)
	assert.Equal(t, 5, block.Rooms[4].RoomNumber)
	assert.Equal(t, 2, block.Rooms[4].AvailableBeds)
}

func TestGrowRoomsValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var validation *ValidationError

	_, err := s.GrowRooms(ctx, "block1", 0, model.BedType4)
	assert.ErrorAs(t, err, &validation)

	_, err = s.GrowRooms(ctx, "block1", 1, model.BedType("5 bedded"))
	assert.ErrorAs(t, err, &validation)

	_, err = s.GrowRooms(ctx, "block99", 1, model.BedType4)
	assert.ErrorAs(t, err, &validation)
}

func TestShrinkRoomsLIFO(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 3, model.BedType4)
	require.NoError(t, err)

	block, err := s.ShrinkRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)

	assert.Equal(t, 1, block.TotalRooms)
	require.Len(t, block.Rooms, 1)
	assert.Equal(t, 1, block.Rooms[0].RoomNumber)
}

func TestShrinkRoomsOnlyMatchingBedType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)
	_, err = s.GrowRooms(ctx, "block1", 2, model.BedType2)
	require.NoError(t, err)

	// Removing a 2-bedded room must leave the 4-bedded rooms alone.
	block, err := s.ShrinkRooms(ctx, "block1", 1, model.BedType2)
	require.NoError(t, err)

	assert.Equal(t, 3, block.TotalRooms)
	numbers := make([]int, 0, 3)
	for _, room := range block.Rooms {
		numbers = append(numbers, room.RoomNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, numbers)
}

func TestShrinkRoomsInsufficientCapacity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)

	_, err = s.ShrinkRooms(ctx, "block1", 5, model.BedType4)
	var capacity *CapacityError
	require.ErrorAs(t, err, &capacity)
	assert.Equal(t, 2, capacity.Available)
	assert.Equal(t, 5, capacity.Requested)

	// The failed shrink left the block untouched.
	block, err := s.GetBlock(ctx, "block1")
	require.NoError(t, err)
	assert.Equal(t, 2, block.TotalRooms)
	assert.Len(t, block.Rooms, 2)
}

func TestShrinkRoomsUnknownBlock(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ShrinkRooms(context.Background(), "block2", 1, model.BedType4)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestShrinkRoomsSkipsOccupied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 3, model.BedType4)
	require.NoError(t, err)

	// Room 3 is the LIFO candidate, but it is occupied now.
	seedResident(t, s, "alice", "block1", 3)

	block, err := s.ShrinkRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)

	assert.Equal(t, 1, block.TotalRooms)
	require.Len(t, block.Rooms, 1)
	assert.Equal(t, 3, block.Rooms[0].RoomNumber)

	// Only the one occupied room remains, so another shrink reports
	// zero removable rooms.
	_, err = s.ShrinkRooms(ctx, "block1", 1, model.BedType4)
	var capacity *CapacityError
	require.ErrorAs(t, err, &capacity)
	assert.Equal(t, 0, capacity.Available)
}

func TestRoomNumbersNeverCollide(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 3, model.BedType2)
	require.NoError(t, err)
	_, err = s.ShrinkRooms(ctx, "block1", 2, model.BedType2)
	require.NoError(t, err)

	// Numbering resumes above the surviving maximum.
	block, err := s.GrowRooms(ctx, "block1", 3, model.BedType3)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, room := range block.Rooms {
		assert.False(t, seen[room.RoomNumber], "room number %d reissued", room.RoomNumber)
		seen[room.RoomNumber] = true
	}
	assert.Equal(t, 4, block.TotalRooms)
}

func TestTotalRoomsTracksDeltas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	steps := []struct {
		grow  bool
		count int
	}{
		{true, 4}, {true, 2}, {false, 3}, {true, 1}, {false, 2},
	}

	want := 0
	for _, step := range steps {
		var err error
		if step.grow {
			_, err = s.GrowRooms(ctx, "block3", step.count, model.BedType1)
			want += step.count
		} else {
			_, err = s.ShrinkRooms(ctx, "block3", step.count, model.BedType1)
			want -= step.count
		}
		require.NoError(t, err)
	}

	block, err := s.GetBlock(ctx, "block3")
	require.NoError(t, err)
	assert.Equal(t, want, block.TotalRooms)
	assert.Len(t, block.Rooms, want)
}

func TestAssignRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType2)
	require.NoError(t, err)

	alice := seedResident(t, s, "alice", "block1", 1)
	require.NotNil(t, alice.Room)
	assert.Equal(t, model.BedType2, alice.BedType)
	assert.Equal(t, 1, alice.Room.AvailableBeds)

	// Second bed goes to bob; the room is now full.
	seedResident(t, s, "bob", "block1", 1)

	carol := &model.Resident{Name: "carol"}
	require.NoError(t, s.CreateResident(ctx, carol))
	_, err = s.AssignRoom(ctx, carol.ID, "block1", 1)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAssignRoomReleasesPreviousBed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType1)
	require.NoError(t, err)

	alice := seedResident(t, s, "alice", "block1", 1)

	moved, err := s.AssignRoom(ctx, alice.ID, "block1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Room.RoomNumber)

	block, err := s.GetBlock(ctx, "block1")
	require.NoError(t, err)
	assert.Equal(t, 1, block.Rooms[0].AvailableBeds, "previous bed released")
	assert.Equal(t, 0, block.Rooms[1].AvailableBeds)
}

func TestAssignRoomNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType1)
	require.NoError(t, err)

	r := &model.Resident{Name: "dave"}
	require.NoError(t, s.CreateResident(ctx, r))

	_, err = s.AssignRoom(ctx, r.ID, "block1", 99)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = s.AssignRoom(ctx, r.ID, "block2", 1)
	assert.ErrorIs(t, err, ErrBlockNotFound)

	_, err = s.AssignRoom(ctx, "no-such-resident", "block1", 1)
	assert.ErrorIs(t, err, ErrResidentNotFound)
}

func TestRequestSwap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)

	swap, err := s.RequestSwap(ctx, alice.ID, bob.ID, "mine is noisy")
	require.NoError(t, err)
	assert.Equal(t, model.SwapPending, swap.Status)
	assert.Equal(t, alice.ID, swap.RequesterID)
	assert.Equal(t, bob.ID, swap.TargetID)
	assert.False(t, swap.CreatedAt.IsZero())
}

func TestRequestSwapDuplicatePending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "again")
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	// The reverse direction is a different ordered pair.
	_, err = s.RequestSwap(ctx, bob.ID, alice.ID, "")
	assert.NoError(t, err)

	swaps, err := s.ListSwaps(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, swaps, 2)
}

func TestRequestSwapValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)

	_, err = s.RequestSwap(ctx, alice.ID, alice.ID, "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = s.RequestSwap(ctx, alice.ID, "no-such-resident", "")
	assert.ErrorIs(t, err, ErrResidentNotFound)
}

func TestAcceptSwapExchangesAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType4)
	require.NoError(t, err)
	_, err = s.GrowRooms(ctx, "block2", 5, model.BedType2)
	require.NoError(t, err)

	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block2", 5)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)

	result, err := s.AcceptSwap(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SwapAccepted, result.Request.Status)

	assert.Equal(t, "block2", result.Requester.Block.Name)
	assert.Equal(t, 5, result.Requester.Room.RoomNumber)
	assert.Equal(t, model.BedType2, result.Requester.BedType)

	assert.Equal(t, "block1", result.Accepter.Block.Name)
	assert.Equal(t, 1, result.Accepter.Room.RoomNumber)
	assert.Equal(t, model.BedType4, result.Accepter.BedType)

	// The exchange is occupancy-preserving: both beds stay claimed.
	block1, err := s.GetBlock(ctx, "block1")
	require.NoError(t, err)
	assert.Equal(t, 3, block1.Rooms[0].AvailableBeds)
}

func TestAcceptSwapWithoutPendingRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)

	_, err = s.AcceptSwap(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSwapNotFound)
}

func TestAcceptSwapIsTerminal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = s.AcceptSwap(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	// The request is resolved; accepting or rejecting again finds no
	// pending request.
	_, err = s.AcceptSwap(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSwapNotFound)
	_, err = s.RejectSwap(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSwapNotFound)
}

func TestAcceptSwapConflictRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType4)
	require.NoError(t, err)
	_, err = s.GrowRooms(ctx, "block2", 1, model.BedType2)
	require.NoError(t, err)

	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block2", 1)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)

	// Simulate an out-of-band inventory change: bob's room vanishes
	// between request and accept.
	require.NoError(t, s.DB().Delete(&model.Room{}, *bob.RoomID).Error)

	_, err = s.AcceptSwap(ctx, bob.ID, alice.ID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// All-or-nothing: neither assignment changed and the request is
	// still pending.
	reloaded, err := s.GetResident(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "block1", reloaded.Block.Name)

	swaps, err := s.ListSwaps(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Equal(t, model.SwapPending, swaps[0].Status)
}

func TestAcceptSwapUnassignedParty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)

	bob := &model.Resident{Name: "bob"}
	require.NoError(t, s.CreateResident(ctx, bob))

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)

	_, err = s.AcceptSwap(ctx, bob.ID, alice.ID)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestAcceptSwapStaleSnapshotWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 3, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)

	// Capture alice's assignment, then move her. The write below acts
	// on the stale capture, the way a concurrent accept sharing alice
	// would after losing the race.
	stale := *alice
	_, err = s.AssignRoom(ctx, alice.ID, "block1", 3)
	require.NoError(t, err)

	err = s.DB().Transaction(func(tx *gorm.DB) error {
		return writeAssignment(tx, &stale, bob)
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// The stale write rolled back; alice kept the room she moved to.
	reloaded, err := s.GetResident(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Room.RoomNumber)
}

func TestAcceptSwapSharedRequester(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 1, model.BedType4)
	require.NoError(t, err)
	_, err = s.GrowRooms(ctx, "block2", 1, model.BedType2)
	require.NoError(t, err)
	_, err = s.GrowRooms(ctx, "block3", 1, model.BedType3)
	require.NoError(t, err)

	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block2", 1)
	carol := seedResident(t, s, "carol", "block3", 1)

	// Alice has pending requests to two different residents.
	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = s.RequestSwap(ctx, alice.ID, carol.ID, "")
	require.NoError(t, err)

	// Bob accepts first; carol's accept must exchange with alice's
	// room as it is then, not as it was at request time.
	_, err = s.AcceptSwap(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = s.AcceptSwap(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	rooms := make(map[int64]string)
	for _, id := range []string{alice.ID, bob.ID, carol.ID} {
		r, err := s.GetResident(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, r.RoomID)
		if holder, taken := rooms[*r.RoomID]; taken {
			t.Fatalf("residents %s and %s hold the same room", holder, r.ID)
		}
		rooms[*r.RoomID] = r.ID
		assert.Equal(t, r.BedType.Capacity()-1, r.Room.AvailableBeds)
	}

	// Chain resolved: alice took carol's room via bob's.
	final, err := s.GetResident(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "block3", final.Block.Name)
}

func TestRejectSwap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 2, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)

	swap, err := s.RejectSwap(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SwapRejected, swap.Status)

	// Assignments untouched.
	reloaded, err := s.GetResident(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Room.RoomNumber)

	// A rejected request frees the pair for a new one.
	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "second try")
	assert.NoError(t, err)
}

func TestListSwaps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GrowRooms(ctx, "block1", 3, model.BedType4)
	require.NoError(t, err)
	alice := seedResident(t, s, "alice", "block1", 1)
	bob := seedResident(t, s, "bob", "block1", 2)
	carol := seedResident(t, s, "carol", "block1", 3)

	_, err = s.RequestSwap(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = s.RequestSwap(ctx, carol.ID, alice.ID, "")
	require.NoError(t, err)
	_, err = s.RequestSwap(ctx, carol.ID, bob.ID, "")
	require.NoError(t, err)

	swaps, err := s.ListSwaps(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, swaps, 2, "alice sees requests she sent and received")

	swaps, err = s.ListSwaps(ctx, carol.ID)
	require.NoError(t, err)
	assert.Len(t, swaps, 2)
}
