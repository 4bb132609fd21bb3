package vm

import (
	"sync"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SessionStore: UUID-handled simulator registry
// ---------------------------------------------------------------------------

// Session pairs a simulator with its handle and display name.
type Session struct {
	ID        string
	Name      string
	Simulator *Simulator
}

// SessionStore manages concurrently-accessed simulator sessions. The
// engine side of the external state store talks to simulators through
// these handles.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for a compiled program.
func (s *SessionStore) Create(name string, program *CompiledProgram) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Simulator: NewSimulator(program),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

// Destroy removes a session.
func (s *SessionStore) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// List returns the live session IDs.
func (s *SessionStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
