package storage

import (
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/photobooth/internal/booth"
)

// SessionStore keeps the live booth sessions of the service in memory.
type SessionStore struct {
	sessions map[string]*booth.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*booth.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*booth.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(session *booth.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

// GetAll returns the sessions ordered by creation time.
func (s *SessionStore) GetAll() []*booth.Session {
	s.mu.RLock()
	result := make([]*booth.Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result
}

// Delete removes the session and closes it. It reports whether it existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if exists {
		session.Close()
	}
	return exists
}

// CloseAll closes and forgets every session, releasing their cameras.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*booth.Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
