package session

import (
	"context"
	"sync"
	"time"

	"ingres-assistant/internal/common/errors"
	"ingres-assistant/internal/common/metrics"
	"ingres-assistant/internal/models"
)

// MemoryStore keeps sessions until the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.ChatSession),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(ctx context.Context, messages []models.ChatMessage) (*models.ChatSession, error) {
	sess := newSession(messages, s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	return cloneSession(sess), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	return cloneSession(sess), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, messages []models.ChatMessage) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	sess.Messages = copyMessages(messages)
	sess.UpdatedAt = s.now()
	return cloneSession(sess), nil
}

// Len reports how many sessions are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
