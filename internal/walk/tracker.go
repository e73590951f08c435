package walk

import (
	"errors"
	"sync"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/shared/geo"
)

var (
	ErrSessionNotActive = errors.New("walk session not active")
	ErrSessionExists    = errors.New("walk session already active")
)

// Tracker owns the in-memory state of active walk sessions. Samples
// for one session are applied under that session's lock, so they are
// processed strictly in arrival order and a stopped session cannot
// accumulate further distance.
type Tracker struct {
	speedLimitMps float64

	mu     sync.RWMutex
	active map[string]*sessionState
}

type sessionState struct {
	mu         sync.Mutex
	userID     string
	dogID      string
	startedAt  time.Time
	last       *Sample
	distanceKm float64
	points     []geo.Point
}

// Snapshot is the tracker state handed off when a session finishes.
type Snapshot struct {
	UserID     string
	DogID      string
	StartedAt  time.Time
	DistanceKm float64
	Points     []geo.Point
}

func NewTracker(speedLimitMps float64) *Tracker {
	if speedLimitMps <= 0 {
		speedLimitMps = 2.5
	}
	return &Tracker{
		speedLimitMps: speedLimitMps,
		active:        map[string]*sessionState{},
	}
}

// Begin registers a new active session with zeroed accumulators.
func (t *Tracker) Begin(sessionID, userID, dogID string, startedAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[sessionID]; ok {
		return ErrSessionExists
	}
	t.active[sessionID] = &sessionState{
		userID:    userID,
		dogID:     dogID,
		startedAt: startedAt,
	}
	return nil
}

// Apply runs a sample through the speed gate. Accepted increments are
// committed only after persist succeeds, so a failed write leaves the
// prior valid state untouched. A rejected sample is discarded entirely:
// it does not become the reference for the next delta.
func (t *Tracker) Apply(sessionID string, s Sample, persist func(deltaKm float64) error) (bool, float64, error) {
	t.mu.RLock()
	state, ok := t.active[sessionID]
	t.mu.RUnlock()
	if !ok {
		return false, 0, ErrSessionNotActive
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if s.SpeedMps >= t.speedLimitMps {
		return false, 0, nil
	}

	deltaKm := 0.0
	if state.last != nil {
		deltaKm = geo.HaversineKm(state.last.Lat, state.last.Lng, s.Lat, s.Lng)
		elapsed := s.RecordedAt.Sub(state.last.RecordedAt).Seconds()
		if geo.ImpliedSpeedMps(deltaKm, elapsed) >= t.speedLimitMps {
			return false, 0, nil
		}
	}

	if persist != nil {
		if err := persist(deltaKm); err != nil {
			return false, 0, err
		}
	}

	sample := s
	state.last = &sample
	state.distanceKm += deltaKm
	state.points = append(state.points, geo.Point{Lat: s.Lat, Lng: s.Lng})
	return true, deltaKm, nil
}

// Peek returns the live accumulators without finishing the session.
func (t *Tracker) Peek(sessionID string) (Snapshot, bool) {
	t.mu.RLock()
	state, ok := t.active[sessionID]
	t.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return snapshotOf(state), true
}

// Conclude hands the final state to persist and removes the session
// only when persist succeeds, so a failed durable write leaves the
// walk stoppable again. A concurrent Conclude serializes on the
// session lock and finds the session gone.
func (t *Tracker) Conclude(sessionID string, persist func(Snapshot) error) (Snapshot, error) {
	t.mu.RLock()
	state, ok := t.active[sessionID]
	t.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrSessionNotActive
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	// the session may have been concluded while we waited for the lock
	t.mu.RLock()
	current, still := t.active[sessionID]
	t.mu.RUnlock()
	if !still || current != state {
		return Snapshot{}, ErrSessionNotActive
	}

	snap := snapshotOf(state)
	if persist != nil {
		if err := persist(snap); err != nil {
			return Snapshot{}, err
		}
	}

	t.mu.Lock()
	delete(t.active, sessionID)
	t.mu.Unlock()
	return snap, nil
}

// Finish removes the session and returns its final state. Samples
// arriving afterwards fail with ErrSessionNotActive.
func (t *Tracker) Finish(sessionID string) (Snapshot, error) {
	t.mu.Lock()
	state, ok := t.active[sessionID]
	if ok {
		delete(t.active, sessionID)
	}
	t.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrSessionNotActive
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return snapshotOf(state), nil
}

// Abort drops the session without returning state.
func (t *Tracker) Abort(sessionID string) {
	t.mu.Lock()
	delete(t.active, sessionID)
	t.mu.Unlock()
}

func snapshotOf(state *sessionState) Snapshot {
	points := make([]geo.Point, len(state.points))
	copy(points, state.points)
	return Snapshot{
		UserID:     state.userID,
		DogID:      state.dogID,
		StartedAt:  state.startedAt,
		DistanceKm: state.distanceKm,
		Points:     points,
	}
}
