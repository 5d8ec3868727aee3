package service

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

// activeCounter reads the live ACTIVE enrollment count for a section.
type activeCounter interface {
	CountActive(ctx context.Context, sectionID string) (int, error)
}

// lockTable hands out one mutex per key, created on first use.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[key] = lock
	}
	return lock
}

// SeatController serialises seat accounting per section. Counts are always
// derived from the authoritative enrollment store inside the section's
// critical section; the controller never caches them. Locks are per section,
// so enrollments into unrelated sections do not contend.
type SeatController struct {
	counter activeCounter
	locks   *lockTable
}

// NewSeatController constructs a SeatController over the given counter.
func NewSeatController(counter activeCounter) *SeatController {
	return &SeatController{counter: counter, locks: newLockTable()}
}

func (c *SeatController) lockFor(sectionID string) *sync.Mutex {
	return c.locks.get(sectionID)
}

// TryReserve admits one seat iff the live ACTIVE count is below capacity,
// running commit while still holding the section lock so the count cannot
// change between the check and the write. Returns false without running
// commit when the section is full. Never blocks beyond the section lock and
// never queues.
func (c *SeatController) TryReserve(ctx context.Context, sectionID string, capacity int, commit func(context.Context) error) (bool, error) {
	lock := c.lockFor(sectionID)
	lock.Lock()
	defer lock.Unlock()

	count, err := c.counter.CountActive(ctx, sectionID)
	if err != nil {
		return false, err
	}
	if count >= capacity {
		return false, nil
	}
	if err := commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ForceReserve runs commit under the section lock without the capacity gate.
// Administrative imports use this path so that counts stay consistent even
// when a section is taken beyond capacity.
func (c *SeatController) ForceReserve(ctx context.Context, sectionID string, commit func(context.Context) error) error {
	lock := c.lockFor(sectionID)
	lock.Lock()
	defer lock.Unlock()
	return commit(ctx)
}

// Release gives a seat back by running release under the section lock.
// Releasing a section with no held seats is a caller error and is reported,
// never silently ignored.
func (c *SeatController) Release(ctx context.Context, sectionID string, release func(context.Context) error) error {
	lock := c.lockFor(sectionID)
	lock.Lock()
	defer lock.Unlock()

	count, err := c.counter.CountActive(ctx, sectionID)
	if err != nil {
		return err
	}
	if count <= 0 {
		return appErrors.Clone(appErrors.ErrSeatNotHeld, "")
	}
	return release(ctx)
}
