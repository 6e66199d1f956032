package indicator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateAndAutoDeactivate(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	defer s.Cleanup()

	state := s.Activate("emp_1001")
	assert.True(t, state.Active)
	assert.NotZero(t, state.UpdatedAt)

	assert.True(t, s.Get("emp_1001").Active)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, s.Get("emp_1001").Active)
}

func TestActivateExtendsPulse(t *testing.T) {
	s := NewStore(50 * time.Millisecond)
	defer s.Cleanup()

	s.Activate("emp_1001")
	time.Sleep(30 * time.Millisecond)

	// Second pulse restarts the timer, so the indicator outlives the
	// first pulse's deadline.
	s.Activate("emp_1001")
	time.Sleep(30 * time.Millisecond)
	assert.True(t, s.Get("emp_1001").Active)

	time.Sleep(40 * time.Millisecond)
	assert.False(t, s.Get("emp_1001").Active)
}

func TestReactivationOutlivesStaleTimer(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	defer s.Cleanup()

	// Re-activate right at the old timer's deadline, over and over. The old
	// timer may already have fired and be waiting on the lock; its callback
	// must not kill the fresh pulse.
	for i := 0; i < 100; i++ {
		s.Activate("emp_1001")
		time.Sleep(30 * time.Millisecond)
		s.Activate("emp_1001")
		time.Sleep(15 * time.Millisecond)
		require.True(t, s.Get("emp_1001").Active,
			"iteration %d: fresh pulse killed before its deadline", i)
		s.Deactivate("emp_1001")
	}
}

func TestDeactivateCancelsTimer(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	defer s.Cleanup()

	s.Activate("emp_1001")
	state := s.Deactivate("emp_1001")
	assert.False(t, state.Active)

	// The stale timer callback must not resurrect or re-notify
	var mu sync.Mutex
	var events []State
	unsub := s.Subscribe("emp_1001", func(st State) {
		mu.Lock()
		events = append(events, st)
		mu.Unlock()
	})
	defer unsub()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1) // initial snapshot only
	assert.False(t, events[0].Active)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	s := NewStore(time.Second)
	defer s.Cleanup()

	state := s.Deactivate("emp_1001")
	assert.False(t, state.Active)
	assert.Zero(t, state.UpdatedAt)
}

func TestGetUnknownUser(t *testing.T) {
	s := NewStore(time.Second)
	defer s.Cleanup()

	state := s.Get("emp_9999")
	assert.Equal(t, "emp_9999", state.UserId)
	assert.False(t, state.Active)
}

func TestSubscribeDeliversSnapshotThenChanges(t *testing.T) {
	s := NewStore(time.Second)
	defer s.Cleanup()

	s.Activate("emp_1001")

	var mu sync.Mutex
	var events []State
	unsub := s.Subscribe("emp_1001", func(st State) {
		mu.Lock()
		events = append(events, st)
		mu.Unlock()
	})

	mu.Lock()
	require.Len(t, events, 1)
	assert.True(t, events[0].Active)
	mu.Unlock()

	s.Deactivate("emp_1001")

	mu.Lock()
	require.Len(t, events, 2)
	assert.False(t, events[1].Active)
	mu.Unlock()

	unsub()
	s.Activate("emp_1001")

	mu.Lock()
	assert.Len(t, events, 2)
	mu.Unlock()
}

func TestSubscriberMayCallBackIntoStore(t *testing.T) {
	s := NewStore(time.Second)
	defer s.Cleanup()

	// Notifications run outside the store lock, so re-entering the Store
	// from a callback must not deadlock.
	var got State
	unsub := s.Subscribe("emp_1001", func(st State) {
		got = s.Get("emp_1001")
	})
	defer unsub()

	s.Activate("emp_1001")
	assert.True(t, got.Active)
}

func TestSubscribersAreIndependent(t *testing.T) {
	s := NewStore(time.Second)
	defer s.Cleanup()

	var mu sync.Mutex
	countA, countB := 0, 0
	unsubA := s.Subscribe("emp_1001", func(State) {
		mu.Lock()
		countA++
		mu.Unlock()
	})
	unsubB := s.Subscribe("emp_1001", func(State) {
		mu.Lock()
		countB++
		mu.Unlock()
	})
	defer unsubB()

	s.Activate("emp_1001")
	unsubA()
	s.Deactivate("emp_1001")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, countA) // snapshot + activate
	assert.Equal(t, 3, countB) // snapshot + activate + deactivate
}

func TestUsersAreIndependent(t *testing.T) {
	s := NewStore(time.Second)
	defer s.Cleanup()

	s.Activate("emp_1001")
	assert.True(t, s.Get("emp_1001").Active)
	assert.False(t, s.Get("emp_1002").Active)

	s.Deactivate("emp_1001")
	s.Activate("emp_1002")
	assert.False(t, s.Get("emp_1001").Active)
	assert.True(t, s.Get("emp_1002").Active)
}

func TestCleanupStopsTimers(t *testing.T) {
	s := NewStore(20 * time.Millisecond)

	s.Activate("emp_1001")
	s.Activate("emp_1002")
	s.Cleanup()

	// State is gone and no timer fires afterwards
	assert.False(t, s.Get("emp_1001").Active)
	time.Sleep(40 * time.Millisecond)
	assert.False(t, s.Get("emp_1002").Active)
}

func TestDefaultDuration(t *testing.T) {
	s := NewStore(0)
	assert.Equal(t, 3*time.Second, s.Duration())
}
