package core

import (
	"sync"
	"time"
)

type cachedSession struct {
	coach     Coach
	expiresAt time.Time
}

// SessionCache maps session tokens to logged in coaches.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]cachedSession
	now      func() time.Time
}

func NewSessionCache() *SessionCache {
	return &SessionCache{
		sessions: make(map[string]cachedSession),
		now:      time.Now,
	}
}

func (s *SessionCache) Put(token string, coach Coach, expiresAt time.Time) {
	coach.Password = ""
	coach.PasswordX = ""
	s.mu.Lock()
	s.sessions[token] = cachedSession{coach: coach, expiresAt: expiresAt}
	s.mu.Unlock()
}

// Get returns the coach for token. Expired entries are dropped.
func (s *SessionCache) Get(token string) (Coach, bool) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Coach{}, false
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.Delete(token)
		return Coach{}, false
	}
	return entry.coach, true
}

func (s *SessionCache) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *SessionCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
