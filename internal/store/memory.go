// internal/store/memory.go
//
// In-memory session store.
// Each session owns one game engine for the lifetime of a browser tab (or API client).
//
// Characteristics:
//   - Sessions keyed by ID in a map guarded by an RWMutex.
//   - Get touches the session so idle sweeping only removes abandoned games.
//   - State is lost when the process restarts; engines are pure in-memory sessions.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/resetslot/internal/game"
)

// ErrNotFound is returned for unknown ids.
var ErrNotFound = errors.New("not found")

// Session binds an engine to an id plus host-side bookkeeping.
type Session struct {
	ID        string
	Engine    *game.Engine
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	receipt  string
	live     func() // stops the attached live host
	liveGen  uint64
}

// NewSession wraps an engine.
func NewSession(id string, e *game.Engine, now time.Time) *Session {
	return &Session{ID: id, Engine: e, CreatedAt: now, lastSeen: now}
}

// Touch marks the session as used at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SetReceipt stores the completion receipt issued for this session.
func (s *Session) SetReceipt(r string) {
	s.mu.Lock()
	s.receipt = r
	s.mu.Unlock()
}

// Receipt returns the completion receipt, or "" before a win.
func (s *Session) Receipt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}

// Attach makes stop the session's single live host, calling the previous
// host's stop first. The returned release detaches stop unless a newer host
// has replaced it since.
func (s *Session) Attach(stop func()) (release func()) {
	s.mu.Lock()
	prev := s.live
	s.live = stop
	s.liveGen++
	gen := s.liveGen
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return func() {
		s.mu.Lock()
		if s.liveGen == gen {
			s.live = nil
		}
		s.mu.Unlock()
	}
}

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID and marks it as used.
	// Returns ErrNotFound if the session is unknown.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions idle since before cutoff and reports how many went.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return newMemory(time.Now)
}

func newMemory(now func() time.Time) *memory {
	return &memory{sessions: make(map[string]*Session), now: now}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch(m.now())
	return s, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
