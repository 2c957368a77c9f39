package navigation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/starford/organizer/internal/apperr"
)

// Sessions holds one Stack per client session.
type Sessions struct {
	mu     sync.Mutex
	stacks map[string]*Stack
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{stacks: make(map[string]*Stack)}
}

// Open starts a session at root and returns its id.
func (s *Sessions) Open() (string, State) {
	id := uuid.NewString()
	st := &Stack{}

	s.mu.Lock()
	s.stacks[id] = st
	s.mu.Unlock()

	return id, st.Snapshot()
}

// Get returns the state of session id.
func (s *Sessions) Get(id string) (State, error) {
	return s.Do(id, func(*Stack) error { return nil })
}

// Do runs fn against session id while holding the registry lock and returns
// the resulting state. If fn fails the state is returned unchanged.
func (s *Sessions) Do(id string, fn func(*Stack) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stacks[id]
	if !ok {
		return State{}, apperr.ErrNotFound
	}
	if err := fn(st); err != nil {
		return st.Snapshot(), err
	}
	return st.Snapshot(), nil
}

// Close forgets session id. Unknown ids are ignored.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	delete(s.stacks, id)
	s.mu.Unlock()
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stacks)
}
