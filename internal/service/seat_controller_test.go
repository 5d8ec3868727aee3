package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

// countingStore is a thread-safe activeCounter whose count is mutated by the
// commit callbacks, mirroring how the real store behaves under the section
// lock.
type countingStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{counts: make(map[string]int)}
}

func (s *countingStore) CountActive(ctx context.Context, sectionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[sectionID], nil
}

func (s *countingStore) add(sectionID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[sectionID] += delta
}

func TestSeatControllerTryReserve(t *testing.T) {
	store := newCountingStore()
	seats := NewSeatController(store)

	ok, err := seats.TryReserve(context.Background(), "sec-1", 1, func(ctx context.Context) error {
		store.add("sec-1", 1)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ok)

	committed := false
	ok, err = seats.TryReserve(context.Background(), "sec-1", 1, func(ctx context.Context) error {
		committed = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, committed, "commit must not run when the section is full")
}

func TestSeatControllerTryReserveZeroCapacity(t *testing.T) {
	store := newCountingStore()
	seats := NewSeatController(store)

	ok, err := seats.TryReserve(context.Background(), "sec-1", 0, func(ctx context.Context) error {
		t.Fatal("commit ran for a zero-capacity section")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeatControllerTryReserveCommitError(t *testing.T) {
	store := newCountingStore()
	seats := NewSeatController(store)
	boom := errors.New("boom")

	ok, err := seats.TryReserve(context.Background(), "sec-1", 5, func(ctx context.Context) error {
		return boom
	})
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestSeatControllerConcurrentReservations(t *testing.T) {
	const capacity = 5
	const contenders = 50

	store := newCountingStore()
	seats := NewSeatController(store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := seats.TryReserve(context.Background(), "sec-1", capacity, func(ctx context.Context) error {
				store.add("sec-1", 1)
				return nil
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, admitted)
	count, err := store.CountActive(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestSeatControllerForceReserveIgnoresCapacity(t *testing.T) {
	store := newCountingStore()
	store.add("sec-1", 3)
	seats := NewSeatController(store)

	err := seats.ForceReserve(context.Background(), "sec-1", func(ctx context.Context) error {
		store.add("sec-1", 1)
		return nil
	})
	require.NoError(t, err)

	count, _ := store.CountActive(context.Background(), "sec-1")
	assert.Equal(t, 4, count)
}

func TestSeatControllerRelease(t *testing.T) {
	store := newCountingStore()
	store.add("sec-1", 1)
	seats := NewSeatController(store)

	err := seats.Release(context.Background(), "sec-1", func(ctx context.Context) error {
		store.add("sec-1", -1)
		return nil
	})
	require.NoError(t, err)

	err = seats.Release(context.Background(), "sec-1", func(ctx context.Context) error {
		t.Fatal("release ran with no held seats")
		return nil
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSeatNotHeld.Code, appErr.Code)
}
