package service

import (
	"context"
	"sync"
	"time"

	"github.com/stemsi/cybertest-backend/internal/model"
)

// SessionStore holds exam sessions keyed by session token.
type SessionStore interface {
	// Save creates or replaces the session for sess.Token with an empty answered set.
	Save(ctx context.Context, sess *model.ExamSession) error
	// Get returns the session snapshot or ErrSessionNotFound.
	Get(ctx context.Context, token string) (*model.ExamSession, error)
	// MarkAnswered adds questionID to the answered set if absent, atomically,
	// and returns the updated snapshot.
	MarkAnswered(ctx context.Context, token, questionID string) (*model.ExamSession, error)
	// Delete discards the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error
}

type memorySession struct {
	mu        sync.Mutex
	startedAt time.Time
	total     int
	answered  map[string]struct{}
	expiresAt time.Time
}

func (s *memorySession) snapshot(token string) *model.ExamSession {
	return &model.ExamSession{
		Token:          token,
		StartedAt:      s.startedAt,
		TotalQuestions: s.total,
		AnsweredCount:  len(s.answered),
	}
}

// MemorySessionStore keeps sessions in process memory with a sliding TTL.
// Expired sessions are dropped lazily on access.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates a MemorySessionStore. A zero ttl never expires sessions.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save implements SessionStore.
func (m *MemorySessionStore) Save(_ context.Context, sess *model.ExamSession) error {
	ms := &memorySession{
		startedAt: sess.StartedAt,
		total:     sess.TotalQuestions,
		answered:  make(map[string]struct{}),
		expiresAt: m.expiry(),
	}

	m.mu.Lock()
	m.sessions[sess.Token] = ms
	m.mu.Unlock()
	return nil
}

// Get implements SessionStore.
func (m *MemorySessionStore) Get(_ context.Context, token string) (*model.ExamSession, error) {
	ms, ok := m.lookup(token)
	if !ok {
		return nil, ErrSessionNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.expiresAt = m.expiry()
	return ms.snapshot(token), nil
}

// MarkAnswered implements SessionStore.
func (m *MemorySessionStore) MarkAnswered(_ context.Context, token, questionID string) (*model.ExamSession, error) {
	ms, ok := m.lookup(token)
	if !ok {
		return nil, ErrSessionNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, seen := ms.answered[questionID]; !seen {
		ms.answered[questionID] = struct{}{}
	}
	ms.expiresAt = m.expiry()
	return ms.snapshot(token), nil
}

// Delete implements SessionStore.
func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) lookup(token string) (*memorySession, bool) {
	m.mu.RLock()
	ms, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if m.ttl > 0 {
		ms.mu.Lock()
		expired := m.now().After(ms.expiresAt)
		ms.mu.Unlock()
		if expired {
			m.mu.Lock()
			if m.sessions[token] == ms {
				delete(m.sessions, token)
			}
			m.mu.Unlock()
			return nil, false
		}
	}
	return ms, true
}

func (m *MemorySessionStore) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}
