package state

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps session states in process memory. It clones on every
// access so callers never share mutable internals with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*SessionState
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*SessionState)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*SessionState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := st.Clone()
	if prev, ok := s.states[st.SessionID]; ok {
		next.Version = prev.Version + 1
	} else if next.Version <= 0 {
		next.Version = 1
	}
	s.states[st.SessionID] = next
	st.Version = next.Version
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, sessionID)
	return nil
}
