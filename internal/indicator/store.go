package indicator

import (
	"sync"
	"time"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/pkg/constant"
)

// State is one user's send-indicator snapshot
type State struct {
	UserId    string `json:"user_id"`
	Active    bool   `json:"active"`
	UpdatedAt int64  `json:"updated_at"`
}

// Subscriber receives a snapshot on subscribe and on every change after.
// Callbacks run outside the store lock, so a subscriber may call back into
// the Store.
type Subscriber func(State)

type userState struct {
	active    bool
	updatedAt int64
	// gen increments on every Activate/Deactivate; a timer callback carrying
	// an older gen lost the race with a newer pulse and must not fire.
	gen         uint64
	timer       *time.Timer
	subscribers map[int64]Subscriber
}

// Store tracks the per-user send indicator: a short pulse shown to the other
// side whenever the user's message lands. Activating an already active
// indicator restarts its timer, it never stacks a second pulse. The store is
// process-local; it holds no history and survives nothing.
type Store struct {
	mu       sync.Mutex
	duration time.Duration
	nextSub  int64
	users    map[string]*userState
}

// NewStore creates a Store whose pulses last duration
func NewStore(duration time.Duration) *Store {
	if duration <= 0 {
		duration = constant.DefaultIndicatorDuration
	}
	return &Store{
		duration: duration,
		users:    make(map[string]*userState),
	}
}

// Duration returns the configured pulse length
func (s *Store) Duration() time.Duration {
	return s.duration
}

func (s *Store) state(userId string) *userState {
	us, ok := s.users[userId]
	if !ok {
		us = &userState{subscribers: make(map[int64]Subscriber)}
		s.users[userId] = us
	}
	return us
}

func (s *Store) snapshotLocked(userId string, us *userState) State {
	return State{
		UserId:    userId,
		Active:    us.active,
		UpdatedAt: us.updatedAt,
	}
}

func subscribersLocked(us *userState) []Subscriber {
	if len(us.subscribers) == 0 {
		return nil
	}
	subs := make([]Subscriber, 0, len(us.subscribers))
	for _, sub := range us.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

func notify(subs []Subscriber, snap State) {
	for _, sub := range subs {
		sub(snap)
	}
}

// Activate turns the user's indicator on and (re)starts its deactivation
// timer. A pulse arriving while one is running extends the pulse, nothing
// more.
func (s *Store) Activate(userId string) State {
	s.mu.Lock()

	us := s.state(userId)
	us.active = true
	us.updatedAt = time.Now().UnixMilli()
	us.gen++
	gen := us.gen

	if us.timer != nil {
		us.timer.Stop()
	}
	us.timer = time.AfterFunc(s.duration, func() {
		s.expire(userId, gen)
	})

	snap := s.snapshotLocked(userId, us)
	subs := subscribersLocked(us)
	s.mu.Unlock()

	notify(subs, snap)
	return snap
}

// Deactivate turns the indicator off immediately and cancels the timer
func (s *Store) Deactivate(userId string) State {
	s.mu.Lock()

	us := s.state(userId)
	us.gen++
	if us.timer != nil {
		us.timer.Stop()
		us.timer = nil
	}

	var subs []Subscriber
	if us.active {
		us.active = false
		us.updatedAt = time.Now().UnixMilli()
		subs = subscribersLocked(us)
	}
	snap := s.snapshotLocked(userId, us)
	s.mu.Unlock()

	notify(subs, snap)
	return snap
}

// expire is the timer callback. Stop cannot unblock a callback already
// waiting on the lock, so the generation captured at arming time decides:
// if a newer Activate or Deactivate bumped it, this firing is stale and
// must leave the fresh pulse alone.
func (s *Store) expire(userId string, gen uint64) {
	s.mu.Lock()

	us, ok := s.users[userId]
	if !ok || us.gen != gen || !us.active {
		s.mu.Unlock()
		return
	}
	us.active = false
	us.updatedAt = time.Now().UnixMilli()
	us.timer = nil

	snap := s.snapshotLocked(userId, us)
	subs := subscribersLocked(us)
	s.mu.Unlock()

	notify(subs, snap)
}

// Get returns the current snapshot without touching timers
func (s *Store) Get(userId string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	us, ok := s.users[userId]
	if !ok {
		return State{UserId: userId}
	}
	return s.snapshotLocked(userId, us)
}

// Subscribe registers sub for userId. The current snapshot is delivered
// immediately so a late subscriber starts from truth, not from silence. The
// returned function unsubscribes.
func (s *Store) Subscribe(userId string, sub Subscriber) func() {
	s.mu.Lock()
	us := s.state(userId)
	id := s.nextSub
	s.nextSub++
	us.subscribers[id] = sub
	snap := s.snapshotLocked(userId, us)
	s.mu.Unlock()

	sub(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if us, ok := s.users[userId]; ok {
			delete(us.subscribers, id)
		}
	}
}

// Cleanup cancels every pending timer and drops all state. Call on shutdown.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, us := range s.users {
		us.gen++
		if us.timer != nil {
			us.timer.Stop()
			us.timer = nil
			n++
		}
	}
	s.users = make(map[string]*userState)
	if n > 0 {
		log.Info("indicator store cleanup: cancelled %d pending timers", n)
	}
}
