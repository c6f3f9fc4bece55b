package store

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// Store defines all database operations of the hostel core: room
// inventory, the resident directory and the swap workflow.
type Store interface {
	// DB exposes the underlying gorm handle for auxiliary queries
	// (push subscriptions, listings) that need no locking discipline.
	DB() *gorm.DB

	// Room inventory
	GrowRooms(ctx context.Context, block string, count int, bedType model.BedType) (*model.Block, error)
	ShrinkRooms(ctx context.Context, block string, count int, bedType model.BedType) (*model.Block, error)
	GetBlock(ctx context.Context, name string) (*model.Block, error)
	ListBlocks(ctx context.Context) ([]model.Block, error)

	// Resident directory
	CreateResident(ctx context.Context, r *model.Resident) error
	GetResident(ctx context.Context, id string) (*model.Resident, error)
	FindResidentByEmail(ctx context.Context, email string) (*model.Resident, error)
	FindResidentByPhone(ctx context.Context, phone string) (*model.Resident, error)
	ListResidents(ctx context.Context, filter ResidentFilter) ([]model.Resident, error)
	AssignRoom(ctx context.Context, residentID, block string, roomNumber int) (*model.Resident, error)
	MarkVerified(ctx context.Context, residentID string) error
	UpdateResidentPassword(ctx context.Context, residentID, passwordHash string) error

	// Swap workflow
	RequestSwap(ctx context.Context, requesterID, targetID, message string) (*model.SwapRequest, error)
	AcceptSwap(ctx context.Context, accepterID, requesterID string) (*SwapResult, error)
	RejectSwap(ctx context.Context, accepterID, requesterID string) (*model.SwapRequest, error)
	ListSwaps(ctx context.Context, residentID string) ([]model.SwapRequest, error)

	// Admin accounts
	CreateAdmin(ctx context.Context, a *model.Admin) error
	FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	UpdateAdminPassword(ctx context.Context, username, passwordHash string) error
}

// ResidentFilter narrows ListResidents. Zero values match everything.
type ResidentFilter struct {
	Block   string
	BedType model.BedType
}

// SwapResult carries the outcome of an accepted swap: both residents
// with their exchanged assignments and the terminal request.
type SwapResult struct {
	Request   model.SwapRequest
	Requester model.Resident
	Accepter  model.Resident
}

// gormStore implements the Store interface using GORM. Mutating
// operations combine a transaction with a keyed in-process lock:
// per-block for inventory changes, per-ordered-pair for the swap
// workflow, so check-then-mutate sequences never interleave.
type gormStore struct {
	db    *gorm.DB
	locks *keyedLock
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, locks: newKeyedLock()}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// keyedLock hands out one mutex per key so unrelated blocks and swap
// pairs never contend. Entries are reference counted and removed once
// idle, keeping the map bounded.
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key and returns its release function.
func (k *keyedLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func blockKey(name string) string {
	return "block:" + name
}

func pairKey(requesterID, targetID string) string {
	return "pair:" + requesterID + ":" + targetID
}
