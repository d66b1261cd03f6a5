package importbundle

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Session is an analyzed upload waiting for confirmation. The file lives in
// Dir, a directory owned by the session.
type Session struct {
	Ticket    string
	CoachId   uint
	Dir       string
	FilePath  string
	Filename  string
	Mapping   FieldMapping
	Columns   []string
	RowCount  int
	ExpiresAt time.Time
}

const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// SessionStore keeps import sessions in memory and owns their files.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
	open     prometheus.Gauge
}

func NewSessionStore(ttl time.Duration, logger *log.Logger, open prometheus.Gauge) *SessionStore {
	if logger == nil {
		logger = log.Default()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		open:     open,
	}
}

// Open registers s under a fresh ticket.
func (s *SessionStore) Open(session *Session) string {
	session.Ticket = uuid.NewString()
	session.ExpiresAt = s.now().Add(s.ttl)

	s.mu.Lock()
	s.sessions[session.Ticket] = session
	s.mu.Unlock()
	s.gaugeAdd(1)
	return session.Ticket
}

// Get returns a live session owned by coachId.
func (s *SessionStore) Get(ticket string, coachId uint) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[ticket]
	if !ok || session.CoachId != coachId || !s.now().Before(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// Take removes the session from the store. The caller must Close it.
func (s *SessionStore) Take(ticket string, coachId uint) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[ticket]
	if !ok || session.CoachId != coachId {
		return nil, ErrSessionNotFound
	}
	delete(s.sessions, ticket)
	s.gaugeAdd(-1)
	if !s.now().Before(session.ExpiresAt) {
		s.Close(session)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// UpdateMapping remembers an edited mapping for a later confirm.
func (s *SessionStore) UpdateMapping(ticket string, coachId uint, mapping FieldMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[ticket]
	if !ok || session.CoachId != coachId {
		return ErrSessionNotFound
	}
	session.Mapping = mapping
	return nil
}

// Close deletes the session's files.
func (s *SessionStore) Close(session *Session) {
	if session == nil || session.Dir == "" {
		return
	}
	if err := os.RemoveAll(session.Dir); err != nil {
		s.logger.Warn("removing import files", "ticket", session.Ticket, "err", err)
	}
}

// Sweep closes every expired session and returns how many it closed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	var expired []*Session

	s.mu.Lock()
	for ticket, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			expired = append(expired, session)
			delete(s.sessions, ticket)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		s.gaugeAdd(-1)
		s.Close(session)
		s.logger.Debug("import session expired", "ticket", session.Ticket, "coach", session.CoachId)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes what is left.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, session := range sessions {
		s.gaugeAdd(-1)
		s.Close(session)
	}
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) gaugeAdd(v float64) {
	if s.open != nil {
		s.open.Add(v)
	}
}
